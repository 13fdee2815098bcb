package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/encmend/internal/domain"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// maxCharIssues caps the character issues listed under one file.
const maxCharIssues = 5

// RenderScanReport formats a scan for terminal output.
func RenderScanReport(r *domain.ScanReport) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("encmend")
	subtitle := dimStyle.Render("Encoding Scan")
	pct := 100
	if r.Total > 0 {
		pct = r.OK * 100 / r.Total
	}
	counts := fmt.Sprintf("%d files  %s  %s",
		r.Total,
		passStyle.Render(fmt.Sprintf("%d ok", r.OK)),
		problemStyle(r.Problems).Render(fmt.Sprintf("%d problems", r.Problems)),
	)
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + counts + "\n" + coloredBar(pct, 30)))
	b.WriteString("\n\n")

	if r.Total == 0 {
		b.WriteString("  " + dimStyle.Render(fmt.Sprintf("No %s files found under %s.", r.Extension, r.Root)) + "\n")
		return b.String()
	}

	// ── Files ──
	normalize := 0
	for _, issue := range r.Issues {
		if issue.NeedsNormalization() && !issue.HasProblems {
			normalize++
		}
		renderIssueLine(&b, r.Root, issue)
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	// ── Summary ──
	b.WriteString("  " + titleStyle.Render("Summary") + "  ")
	if r.Problems > 0 {
		b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d problems", r.Problems)) + "  ")
	}
	if normalize > 0 {
		b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d to normalise", normalize)) + "  ")
	}
	if n := r.ReplacementCount(); n > 0 {
		b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d replacement characters", n)))
	}
	if r.Problems == 0 && normalize == 0 {
		b.WriteString(passStyle.Render("All files are clean UTF-8."))
	}
	b.WriteString("\n\n")
	return b.String()
}

func renderIssueLine(b *strings.Builder, root string, issue domain.EncodingIssue) {
	var icon string
	switch {
	case issue.HasProblems:
		icon = failStyle.Render("●")
	case issue.NeedsNormalization():
		icon = warnStyle.Render("●")
	default:
		icon = passStyle.Render("●")
	}

	encodings := fmt.Sprintf("%s → %s", issue.DeclaredEncoding, issue.ActualEncoding)
	if issue.DeclaredVia != "" {
		encodings += fmt.Sprintf(" (declared via %s)", issue.DeclaredVia)
	}
	line := fmt.Sprintf("  %s %s %s", icon, padRight(relPath(root, issue.Path), 40), dimStyle.Render(encodings))
	if issue.BOMDetected {
		line += "  " + warnTagStyle.Render("BOM")
	}
	if n := len(issue.CharacterIssues); n > 0 {
		line += "  " + errorTagStyle.Render(fmt.Sprintf("%d chars", n))
	}
	b.WriteString(line + "\n")

	if issue.Error != "" {
		fmt.Fprintf(b, "      %s %s\n", errorTagStyle.Render("error"), dimStyle.Render(issue.Error))
	}
	for i, ci := range issue.CharacterIssues {
		if i == maxCharIssues {
			fmt.Fprintf(b, "      %s\n", faintStyle.Render(fmt.Sprintf("… and %d more", len(issue.CharacterIssues)-maxCharIssues)))
			break
		}
		fmt.Fprintf(b, "      %s %s %s  %s\n",
			faintStyle.Render(fmt.Sprintf("L%d:C%d", ci.Line, ci.Column)),
			infoTagStyle.Render(fmt.Sprintf("U+%04X", ci.Char)),
			dimStyle.Render(ci.Description),
			faintStyle.Render(fmt.Sprintf("%q", ci.Context)),
		)
	}
}

// RenderHistory formats run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		date := e.Timestamp
		if len(date) > 10 {
			date = date[:10]
		}

		status := passStyle.Render("ok")
		if !e.Success {
			status = failStyle.Render(fmt.Sprintf("%d manual", e.Manual))
		}
		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(date),
			faintStyle.Render(hash),
			fmt.Sprintf("%d/%d fixed", e.Fixed, e.Problems),
			status,
		)
		if e.DryRun {
			line += "  " + skipStyle.Render("dry run")
		}

		if i > 0 {
			diff := e.Problems - entries[i-1].Problems
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func problemStyle(n int) lipgloss.Style {
	if n == 0 {
		return passStyle
	}
	return failStyle
}

func coloredBar(pct, width int) string {
	filled := max(0, min(pct*width/100, width))
	empty := width - filled

	color := pctColor(pct)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func pctColor(pct int) lipgloss.Color {
	switch {
	case pct >= 100:
		return success
	case pct >= 80:
		return lipgloss.Color("#A3E635") // lime
	case pct >= 50:
		return warning
	default:
		return danger
	}
}

// relPath shows path relative to root when it lies underneath it.
func relPath(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return shortenPath(path)
}

func shortenPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
