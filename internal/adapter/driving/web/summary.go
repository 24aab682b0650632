package web

import (
	"fmt"
	"strings"

	vm "github.com/ericfisherdev/forkmonkey/internal/adapter/driving/web/viewmodel"
)

// summaryMarkdown renders the summary page body as markdown.
func summaryMarkdown(s vm.SummaryViewModel) string {
	var b strings.Builder

	if !s.HasRun {
		b.WriteString("# ForkMonkey\n\nNo scan has been recorded yet.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "# ForkMonkey network of %s\n\n", escapeMarkdown(s.RootRepo))
	fmt.Fprintf(&b, "Last scan finished %s and visited %d repositories (run `%s`).\n\n",
		s.FinishedAt, s.ReposScanned, s.RunID)

	b.WriteString("| Monkeys | Active today | Average rarity | Highest rarity | Lowest rarity |\n")
	b.WriteString("|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %s | %s | %s |\n\n",
		s.TotalMonkeys, s.ActiveToday, s.AvgRarity, s.MaxRarity, s.MinRarity)

	if len(s.Generations) > 0 {
		b.WriteString("## Generations\n\n")
		b.WriteString("| Generation | Monkeys |\n|---|---|\n")
		for _, g := range s.Generations {
			fmt.Fprintf(&b, "| %s | %d |\n", escapeMarkdown(g.Generation), g.Count)
		}
		b.WriteString("\n")
	}

	if len(s.TopRanked) > 0 {
		b.WriteString("## Rarest monkeys\n\n")
		b.WriteString("| Rank | Monkey | Rarity | Generation |\n|---|---|---|---|\n")
		for _, r := range s.TopRanked {
			name := escapeMarkdown(r.FullName)
			if r.URL != "" {
				name = fmt.Sprintf("[%s](%s)", name, r.URL)
			}
			if r.IsRoot {
				name += " (origin)"
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %d |\n", r.Rank, name, r.RarityScore, r.Generation)
		}
		b.WriteString("\n")
	}

	if s.MostCommonTrait != nil || s.RarestTrait != nil {
		b.WriteString("## Traits\n\n")
		writeTrait(&b, "Most common", s.MostCommonTrait)
		writeTrait(&b, "Rarest", s.RarestTrait)
	}

	return b.String()
}

func writeTrait(b *strings.Builder, label string, t *vm.TraitViewModel) {
	if t == nil {
		return
	}
	fmt.Fprintf(b, "- %s: **%s** %s (%d)\n", label, escapeMarkdown(t.Trait), escapeMarkdown(t.Value), t.Count)
}
