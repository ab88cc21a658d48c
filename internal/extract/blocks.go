package extract

import (
	"strings"

	"github.com/ppiankov/celestial/internal/model"
)

// blockMarker introduces each sign entry in a batch document
const blockMarker = "###"

// Block is one sign entry of a batch document
type Block struct {
	Header string     // Raw header token as written
	Sign   model.Sign // Resolved identity
	Body   string
}

// SplitBlocks partitions sanitized text into sign blocks in document order.
// It also returns the header tokens of blocks whose sign could not be
// resolved; those blocks are not part of the result.
func SplitBlocks(text string) ([]Block, []string) {
	var blocks []Block
	var dropped []string

	for _, part := range strings.Split(text, blockMarker) {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}

		header, body, _ := strings.Cut(trimmed, "\n")
		header = strings.TrimSpace(header)

		sign, ok := ResolveSign(header)
		if !ok {
			dropped = append(dropped, header)
			continue
		}

		blocks = append(blocks, Block{
			Header: header,
			Sign:   sign,
			Body:   body,
		})
	}

	return blocks, dropped
}
