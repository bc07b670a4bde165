package layout

// Record is the JSON form of a block, tagged with its kind
type Record struct {
	Kind Kind  `json:"kind"`
	Data Block `json:"data"`
}

// Records tags each block with its kind for serialization
func Records(blocks []Block) []Record {
	records := make([]Record, 0, len(blocks))
	for _, b := range blocks {
		records = append(records, Record{Kind: b.Kind(), Data: b})
	}
	return records
}
