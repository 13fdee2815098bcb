package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/openkraft/encmend/internal/domain"
)

// RenderFixResults lists what a fix command did to each file.
func RenderFixResults(results []domain.FixResult, dryRun bool) string {
	var b strings.Builder
	b.WriteString("\n")
	title := "Fix Results"
	if dryRun {
		title += "  " + skipStyle.Render("(dry run, nothing written)")
	}
	b.WriteString("  " + titleStyle.Render(title) + "\n")
	b.WriteString("  " + separatorLine + "\n\n")

	if len(results) == 0 {
		b.WriteString("  " + dimStyle.Render("No files to fix.") + "\n")
		return b.String()
	}

	var changed, review, failed, fixed int
	for _, r := range results {
		var icon string
		switch {
		case !r.Success:
			icon = failStyle.Render("●")
			failed++
		case r.NeedsManualReview:
			icon = warnStyle.Render("●")
		case r.Changed:
			icon = passStyle.Render("●")
		default:
			icon = skipStyle.Render("○")
		}
		if r.Changed {
			changed++
		}
		if r.NeedsManualReview {
			review++
		}
		fixed += r.FixedCount

		counts := fmt.Sprintf("%d → %d", r.OriginalReplacementCount, r.FinalReplacementCount)
		fmt.Fprintf(&b, "  %s %s %s  %s\n", icon, padRight(r.FileName, 32), faintStyle.Render(strategyLabel(r.Strategies)), dimStyle.Render(counts))
		if r.Message != "" {
			fmt.Fprintf(&b, "      %s\n", dimStyle.Render(r.Message))
		}
		for _, s := range r.Substitutions {
			fmt.Fprintf(&b, "      %s %q → %q ×%d\n", infoTagStyle.Render(string(s.Strategy)), s.Pattern, s.Replacement, s.Count)
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %d files, %s, %s",
		len(results),
		passStyle.Render(fmt.Sprintf("%d changed", changed)),
		infoTagStyle.Render(fmt.Sprintf("%d U+FFFD fixed", fixed)),
	)
	if review > 0 {
		b.WriteString(", " + warnTagStyle.Render(fmt.Sprintf("%d need review", review)))
	}
	if failed > 0 {
		b.WriteString(", " + errorTagStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	b.WriteString("\n")
	return b.String()
}

// RenderBackupRecords lists backup copies and where the manifest went.
func RenderBackupRecords(m *domain.BackupManifest, manifestPath string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Backups") + "  " + dimStyle.Render(m.BackupDir) + "\n")
	b.WriteString("  " + separatorLine + "\n\n")

	if len(m.Records) == 0 {
		b.WriteString("  " + dimStyle.Render("No files needed a backup.") + "\n")
		return b.String()
	}

	failed := 0
	for _, r := range m.Records {
		if r.Success {
			fmt.Fprintf(&b, "  %s %s %s\n", passStyle.Render("●"), padRight(relPath(m.Root, r.OriginalPath), 40), faintStyle.Render(filepath.Base(r.BackupPath)))
			continue
		}
		failed++
		fmt.Fprintf(&b, "  %s %s %s\n", failStyle.Render("●"), padRight(relPath(m.Root, r.OriginalPath), 40), dimStyle.Render(r.Message))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s", passStyle.Render(fmt.Sprintf("%d verified", len(m.Records)-failed)))
	if failed > 0 {
		b.WriteString(", " + errorTagStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	b.WriteString("\n")
	if manifestPath != "" {
		b.WriteString("  " + hintStyle.Render("Manifest: "+manifestPath) + "\n")
	}
	return b.String()
}

// RenderValidationReport lists the parser verdict for each file.
func RenderValidationReport(r *domain.ValidationReport) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Validation") + "  " + dimStyle.Render(r.Root) + "\n")
	b.WriteString("  " + separatorLine + "\n\n")

	for _, v := range r.Results {
		if v.Valid {
			fmt.Fprintf(&b, "  %s %s\n", passStyle.Render("●"), relPath(r.Root, v.Path))
			continue
		}
		where := ""
		if v.Line > 0 {
			where = fmt.Sprintf("line %d: ", v.Line)
		}
		fmt.Fprintf(&b, "  %s %s\n", failStyle.Render("●"), relPath(r.Root, v.Path))
		fmt.Fprintf(&b, "      %s\n", dimStyle.Render(where+v.Message))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s, %s\n",
		passStyle.Render(fmt.Sprintf("%d valid", r.Passed)),
		problemStyle(r.Failed).Render(fmt.Sprintf("%d invalid", r.Failed)),
	)
	return b.String()
}

// RenderRestoreResults lists the outcome of restoring each backup.
func RenderRestoreResults(results []domain.RestoreResult) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Restore") + "\n")
	b.WriteString("  " + separatorLine + "\n\n")
	failed := 0
	for _, r := range results {
		icon := passStyle.Render("●")
		if !r.Success {
			icon = failStyle.Render("●")
			failed++
		}
		fmt.Fprintf(&b, "  %s %s %s\n", icon, padRight(shortenPath(r.OriginalPath), 40), dimStyle.Render(r.Message))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %d restored", len(results)-failed)
	if failed > 0 {
		b.WriteString(", " + errorTagStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	b.WriteString("\n")
	return b.String()
}
