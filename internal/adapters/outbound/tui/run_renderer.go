package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/encmend/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderRunReport renders a pipeline run as a styled TUI string.
func RenderRunReport(r *domain.RunReport) string {
	var b strings.Builder

	// Header
	subtitle := "Remediation Run"
	if r.DryRun {
		subtitle += "  (dry run)"
	}
	verdict := passStyle.Bold(true).Render("success")
	if !r.Success {
		verdict = failStyle.Bold(true).Render(fmt.Sprintf("%d need manual attention", len(r.ManualAttention)))
	}
	totals := fmt.Sprintf("%d files  %d ok  %d selected  %d fixed", r.Total, r.OK, len(r.Files), r.FixedFiles())
	b.WriteString(boxStyle.Render(headerStyle.Render("encmend") + "\n" + dimStyle.Render(subtitle) + "\n\n" + totals + "\n" + verdict))
	b.WriteString("\n")

	renderStages(&b, r.Stages)
	renderOutcomes(&b, r)
	renderManual(&b, r.ManualAttention, r.Root)

	// Footer
	b.WriteString("\n")
	meta := []string{"run " + r.RunID}
	if r.CommitHash != "" {
		hash := r.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		meta = append(meta, "commit "+hash)
	}
	b.WriteString("  " + faintStyle.Render(strings.Join(meta, "  ")) + "\n")
	if r.ManifestPath != "" {
		b.WriteString("  " + hintStyle.Render("Backups recorded in "+r.ManifestPath+"; undo with `encmend restore`.") + "\n")
	}
	return b.String()
}

func renderStages(b *strings.Builder, stages []domain.StageCounts) {
	if len(stages) == 0 {
		return
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "  %s\n", sectionHeaderStyle.Render("Stages"))
	for _, s := range stages {
		parts := []string{fmt.Sprintf("%d processed", s.Processed)}
		if s.Changed > 0 {
			parts = append(parts, fmt.Sprintf("%d changed", s.Changed))
		}
		if s.Fixed > 0 || s.Remaining > 0 {
			parts = append(parts, fmt.Sprintf("%d fixed", s.Fixed), fmt.Sprintf("%d remaining", s.Remaining))
		}
		if s.Skipped > 0 {
			parts = append(parts, skipStyle.Render(fmt.Sprintf("%d skipped", s.Skipped)))
		}
		icon := passStyle.Render("●")
		if s.Failed > 0 {
			icon = failStyle.Render("●")
			parts = append(parts, failStyle.Render(fmt.Sprintf("%d failed", s.Failed)))
		}
		fmt.Fprintf(b, "    %s %s %s\n", icon, padRight(s.Stage, 14), dimStyle.Render(strings.Join(parts, ", ")))
	}
}

func renderOutcomes(b *strings.Builder, r *domain.RunReport) {
	if len(r.Files) == 0 {
		b.WriteString("\n  " + passStyle.Render("No files needed attention.") + "\n")
		return
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n", sectionHeaderStyle.Render("Files"), dimStyle.Render(fmt.Sprintf("(%d)", len(r.Files))))
	for _, f := range r.Files {
		var icon string
		switch {
		case len(f.Reasons) > 0:
			icon = failStyle.Render("●")
		case f.Fixed:
			icon = passStyle.Render("●")
		default:
			icon = warnStyle.Render("●")
		}
		line := fmt.Sprintf("    %s %s", icon, relPath(r.Root, f.Path))
		if f.Remaining > 0 {
			line += "  " + errorTagStyle.Render(fmt.Sprintf("%d U+FFFD left", f.Remaining))
		}
		if f.Validation != nil && !f.Validation.Valid {
			line += "  " + errorTagStyle.Render("invalid")
		}
		b.WriteString(line + "\n")
		for _, fix := range f.Fixes {
			if fix.Message == "" {
				continue
			}
			fmt.Fprintf(b, "        %s %s\n", faintStyle.Render(strategyLabel(fix.Strategies)), dimStyle.Render(fix.Message))
		}
	}
}

func renderManual(b *strings.Builder, items []domain.ManualItem, root string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n", sectionHeaderStyle.Render("Needs Manual Attention"), dimStyle.Render(fmt.Sprintf("(%d)", len(items))))
	for _, item := range items {
		fmt.Fprintf(b, "    %s %s\n", warnStyle.Render("●"), fileStyle.Render(relPath(root, item.Path)))
		for _, reason := range item.Reasons {
			fmt.Fprintf(b, "        %s\n", dimStyle.Render(reason))
		}
	}
}

func strategyLabel(strategies []domain.Strategy) string {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = string(s)
	}
	return strings.Join(names, "+")
}
