package extract

import "github.com/ppiankov/celestial/internal/model"

// Result is the outcome of parsing one batch document
type Result struct {
	Batch   model.Batch
	Blocks  int      // Blocks that resolved to a sign, duplicates included
	Dropped []string // Header tokens of unidentifiable blocks
}

// Parse runs the full ingestion pipeline: sanitize, split, extract.
// A later block for the same sign replaces an earlier one.
func Parse(raw string) *Result {
	blocks, dropped := SplitBlocks(Sanitize(raw))

	batch := make(model.Batch, len(blocks))
	for _, b := range blocks {
		batch[b.Sign] = ExtractFields(b.Body)
	}

	return &Result{
		Batch:   batch,
		Blocks:  len(blocks),
		Dropped: dropped,
	}
}

// ParseBatch returns only the sign-to-record mapping of raw
func ParseBatch(raw string) model.Batch {
	return Parse(raw).Batch
}
