package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/confidence"
	"github.com/sells-group/prospect-cli/internal/model"
)

// callDirectorySearch looks the subject up in provider directories.
func (s *Scheduler) callDirectorySearch(ctx context.Context, st *runState) (*confidence.Evidence, *model.SourceRef, error) {
	query := strings.TrimSpace(strings.Join([]string{st.subject.Name, st.subject.Specialty, st.subject.Location}, " "))
	results, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	if len(results) == 0 {
		return nil, nil, eris.New("scheduler: no directory results")
	}

	top := results[0]
	ev := &confidence.Evidence{
		Type:    confidence.EvidenceDirectoryListing,
		Domain:  hostOf(top.URL),
		Signals: []string{top.Title, top.Snippet},
	}
	src := &model.SourceRef{URL: top.URL, Title: top.Title, Kind: "directory"}
	return ev, src, nil
}

// callWebsiteSearch tries to locate the subject's official website. A
// hit whose domain contains the subject's surname or practice slug
// counts as an official website; anything else is a directory listing.
func (s *Scheduler) callWebsiteSearch(ctx context.Context, st *runState) (*confidence.Evidence, *model.SourceRef, error) {
	query := fmt.Sprintf("%s %s official website", st.subject.Name, st.subject.Practice)
	results, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	if len(results) == 0 {
		return nil, nil, eris.New("scheduler: no website results")
	}

	surname := st.subject.Surname()
	practiceSlug := slugify(st.subject.Practice)

	for _, r := range results {
		host := hostOf(r.URL)
		if (surname != "" && strings.Contains(host, surname)) ||
			(practiceSlug != "" && strings.Contains(slugify(host), practiceSlug)) {
			st.result.Website = r.URL
			ev := &confidence.Evidence{
				Type:    confidence.EvidenceOfficialWebsite,
				Domain:  host,
				Signals: []string{r.Title, r.Snippet},
			}
			src := &model.SourceRef{URL: r.URL, Title: r.Title, Kind: "official_website"}
			return ev, src, nil
		}
	}

	top := results[0]
	if st.result.Website == "" {
		st.result.Website = top.URL
	}
	ev := &confidence.Evidence{
		Type:    confidence.EvidenceDirectoryListing,
		Domain:  hostOf(top.URL),
		Signals: []string{top.Title, top.Snippet},
	}
	src := &model.SourceRef{URL: top.URL, Title: top.Title, Kind: "search"}
	return ev, src, nil
}

// callScrapeWebsite reads the discovered website's homepage.
func (s *Scheduler) callScrapeWebsite(ctx context.Context, st *runState) (*confidence.Evidence, *model.SourceRef, error) {
	if st.result.Website == "" {
		return nil, nil, eris.New("scheduler: no website to scrape")
	}
	content, err := s.provider.Scrape(ctx, st.result.Website)
	if err != nil {
		return nil, nil, err
	}

	ev := &confidence.Evidence{
		Type:    confidence.EvidenceScrapedContent,
		Domain:  hostOf(st.result.Website),
		Signals: []string{truncate(content, 2000)},
	}
	src := &model.SourceRef{URL: st.result.Website, Kind: "scrape"}
	return ev, src, nil
}

// callScrapeAbout reads the website's about page for deeper signals.
func (s *Scheduler) callScrapeAbout(ctx context.Context, st *runState) (*confidence.Evidence, *model.SourceRef, error) {
	if st.result.Website == "" {
		return nil, nil, eris.New("scheduler: no website to scrape")
	}
	aboutURL := strings.TrimRight(st.result.Website, "/") + "/about"
	content, err := s.provider.Scrape(ctx, aboutURL)
	if err != nil {
		return nil, nil, err
	}

	ev := &confidence.Evidence{
		Type:    confidence.EvidenceScrapedContent,
		Domain:  hostOf(aboutURL),
		Signals: []string{truncate(content, 2000)},
	}
	src := &model.SourceRef{URL: aboutURL, Kind: "scrape"}
	return ev, src, nil
}

// callSocialSearch looks for professional profiles.
func (s *Scheduler) callSocialSearch(ctx context.Context, st *runState) (*confidence.Evidence, *model.SourceRef, error) {
	query := fmt.Sprintf("%s %s linkedin profile", st.subject.Name, st.subject.Location)
	results, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	if len(results) == 0 {
		return nil, nil, eris.New("scheduler: no profile results")
	}

	top := results[0]
	ev := &confidence.Evidence{
		Type:    confidence.EvidenceSocialProfile,
		Domain:  hostOf(top.URL),
		Signals: []string{top.Title, top.Snippet},
	}
	src := &model.SourceRef{URL: top.URL, Title: top.Title, Kind: "social_profile"}
	return ev, src, nil
}

// callCompetitorSearch researches the competitive landscape around the
// subject's practice.
func (s *Scheduler) callCompetitorSearch(ctx context.Context, st *runState) (*confidence.Evidence, *model.SourceRef, error) {
	name := st.subject.Practice
	if name == "" {
		name = st.subject.Name
	}
	query := strings.TrimSpace(fmt.Sprintf("%s competitors %s %s", name, st.subject.Specialty, st.subject.Location))
	results, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	if len(results) == 0 {
		return nil, nil, eris.New("scheduler: no competitor results")
	}

	top := results[0]
	ev := &confidence.Evidence{
		Type:    confidence.EvidenceDirectoryListing,
		Domain:  hostOf(top.URL),
		Signals: []string{top.Title, top.Snippet},
	}
	src := &model.SourceRef{URL: top.URL, Title: top.Title, Kind: "competitive"}
	return ev, src, nil
}

// callSynthesizeProfile asks the AI provider for a structured practice
// profile from the evidence gathered so far.
func (s *Scheduler) callSynthesizeProfile(ctx context.Context, st *runState) (*confidence.Evidence, *model.SourceRef, error) {
	text, err := s.provider.Synthesize(ctx, profilePrompt(st))
	if err != nil {
		return nil, nil, err
	}

	ev := &confidence.Evidence{
		Type:    confidence.EvidenceAISynthesis,
		Signals: []string{text},
	}
	src := &model.SourceRef{Kind: "synthesis", Title: "practice profile"}
	return ev, src, nil
}

// callSummarize produces the final result summary.
func (s *Scheduler) callSummarize(ctx context.Context, st *runState) (*confidence.Evidence, *model.SourceRef, error) {
	text, err := s.provider.Synthesize(ctx, summaryPrompt(st))
	if err != nil {
		return nil, nil, err
	}

	st.result.Summary = text
	ev := &confidence.Evidence{
		Type:    confidence.EvidenceAISynthesis,
		Signals: []string{text},
	}
	src := &model.SourceRef{Kind: "synthesis", Title: "final summary"}
	return ev, src, nil
}

func profilePrompt(st *runState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Profile the practice of %s", st.subject.Name)
	if st.subject.Practice != "" {
		fmt.Fprintf(&sb, " at %s", st.subject.Practice)
	}
	if st.subject.Specialty != "" {
		fmt.Fprintf(&sb, " (%s)", st.subject.Specialty)
	}
	sb.WriteString(".\nKnown sources:\n")
	for _, src := range st.result.Sources {
		fmt.Fprintf(&sb, "- %s %s\n", src.Kind, src.URL)
	}
	return sb.String()
}

func summaryPrompt(st *runState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a short outreach summary for %s", st.subject.Name)
	if st.subject.Location != "" {
		fmt.Fprintf(&sb, " in %s", st.subject.Location)
	}
	fmt.Fprintf(&sb, ".\nWebsite: %s\nSources consulted: %d\n", st.result.Website, len(st.result.Sources))
	return sb.String()
}

func slugify(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
