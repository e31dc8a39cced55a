package estimator

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
)

// DefaultContextSizes are the context lengths shown in the quant table.
var DefaultContextSizes = []int{2048, 8192, 16384, 32768, 49152, 65536}

var colourMap = []string{
	"#ff0000", // red
	"#00ff00", // green
}

// GenerateQuantTable estimates total VRAM for every supported GGUF level
// across the given context sizes. fitsVRAM is a caller-supplied budget in
// GB used only for colouring the rendered table; 0 means no budget.
func (c *Client) GenerateQuantTable(modelID string, contextSizes []int, fitsVRAM float64) (QuantTable, error) {
	if len(contextSizes) == 0 {
		contextSizes = DefaultContextSizes
	}

	table := QuantTable{ModelID: modelID, ContextSizes: contextSizes, FitsVRAM: fitsVRAM}

	for _, quant := range ggufQuants {
		row := QuantRow{
			Level:    quant.Level,
			BPW:      quant.BPW,
			Contexts: make(map[int]SizeResult),
		}
		for _, context := range contextSizes {
			result, err := c.ComputeSizesGGUF(modelID, context, quant.Level)
			if err != nil {
				return QuantTable{}, err
			}
			row.Contexts[context] = result
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// FormatQuantTable renders a quant table for the terminal.
func FormatQuantTable(table QuantTable) string {
	var buf bytes.Buffer
	tw := tablewriter.NewWriter(&buf)

	header := []string{"Quant|Ctx", "BPW"}
	for _, context := range table.ContextSizes {
		header = append(header, fmt.Sprintf("%dK", context/1024))
	}
	tw.SetHeader(header)

	tw.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	tw.SetCenterSeparator("|")
	tw.SetColumnSeparator("|")
	tw.SetRowSeparator("-")

	headerColours := make([]tablewriter.Colors, len(header))
	for i := range headerColours {
		headerColours[i] = tablewriter.Colors{tablewriter.FgHiWhiteColor}
	}
	tw.SetHeaderColor(headerColours...)

	for _, result := range table.Rows {
		row := []string{
			result.Level,
			fmt.Sprintf("%.2f", result.BPW),
		}
		for _, context := range table.ContextSizes {
			total := result.Contexts[context].TotalSize
			row = append(row, getColouredVRAM(total, fmt.Sprintf("%.1f", total), table.FitsVRAM))
		}
		tw.Append(row)
	}

	tw.Render()

	return lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Render(fmt.Sprintf("📊 VRAM Estimation for Model: %s\n\n%s", table.ModelID, buf.String()))
}

func getColouredVRAM(vram float64, vramStr string, fitsVRAM float64) string {
	var colorIndex int
	if fitsVRAM > 0 {
		if vram > fitsVRAM {
			colorIndex = 0 // Red
		} else {
			colorIndex = len(colourMap) - 1 // Green
		}
	} else {
		// Calculate color index based on VRAM usage
		if vram <= 4 {
			colorIndex = len(colourMap) - 1
		} else if vram >= 24 {
			colorIndex = 0
		} else {
			// Interpolate between 4 and 24 GB
			colorIndex = len(colourMap) - 1 - int((vram-4)/(24-4)*float64(len(colourMap)-1))
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(colourMap[colorIndex]))
	return style.Render(vramStr)
}
