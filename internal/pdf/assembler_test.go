package pdf

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedflow/internal/contract"
)

type stubNamer struct{}

func (stubNamer) FieldTag(role contract.Role) string {
	return fmt.Sprintf("{{sig:%s}}", strings.ToLower(role.String()))
}

func TestRender(t *testing.T) {
	text := strings.Join([]string{
		"# RESIDENTIAL PURCHASE AGREEMENT",
		"",
		"## PARTIES:",
		"**This agreement** is made between the parties below.",
		"- Buyer: Betty Buyer",
		"- Seller: Sam Seller",
		"---",
		"Plain paragraph text continues here.",
	}, "\n")

	data, err := NewAssembler(stubNamer{}).Render(text, "12 Elm St, Springfield")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"), "output should be a PDF document")
}

func TestRenderEmptyBody(t *testing.T) {
	data, err := NewAssembler(stubNamer{}).Render("", "12 Elm St")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestSignatureBlocksLayout(t *testing.T) {
	const pageWidth = 612.0 // US Letter in points

	blocks := NewAssembler(stubNamer{}).signatureBlocks(pageWidth)
	require.Len(t, blocks, 3)

	assert.Equal(t, contract.RoleBroker, blocks[0].Role)
	assert.Equal(t, contract.RoleBuyer, blocks[1].Role)
	assert.Equal(t, contract.RoleSeller, blocks[2].Role)

	for i, block := range blocks {
		assert.Equal(t, pageMargin, block.SigLineX)
		assert.Equal(t, pageMargin+sigLineWidth, block.SigLineEnd)
		assert.Equal(t, pageWidth-pageMargin, block.DateLineEnd)
		// Signature and date lines must not overlap.
		assert.Less(t, block.SigLineEnd, block.DateLineX)

		if i > 0 {
			assert.Equal(t, sigBlockSpacing, block.LineY-blocks[i-1].LineY)
		}
	}

	assert.Equal(t, "{{sig:broker}}", blocks[0].FieldTag)
	assert.Equal(t, "{{sig:buyer}}", blocks[1].FieldTag)
	assert.Equal(t, "{{sig:seller}}", blocks[2].FieldTag)
}

func TestCleanBodyLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{"strips bold markers", "a **bold** word", "a bold word"},
		{"dash bullet", "- first item", "• first item"},
		{"star bullet", "* second item", "• second item"},
		{"plain line untouched", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanBodyLine(tt.line))
		})
	}
}
