package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/matheuskafuri/folio/internal/catalog"
)

var kindPaths = map[catalog.Kind]string{
	catalog.CaseStudy: "case-studies",
	catalog.Project:   "projects",
	catalog.Article:   "journal",
}

// RecordURL returns where a record lives on the site. An explicit URL on
// the record wins; otherwise the path is built from kind and slug.
func RecordURL(siteURL string, r catalog.Record) (string, error) {
	if r.URL != "" {
		return r.URL, nil
	}
	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		return "", fmt.Errorf("invalid site url %q", siteURL)
	}
	slug := r.Slug
	if slug == "" {
		slug = strings.ToLower(strings.Join(strings.Fields(r.Title), "-"))
	}
	if slug == "" {
		return "", fmt.Errorf("record %d has no slug or title", r.ID)
	}
	section, ok := kindPaths[r.Kind]
	if !ok {
		section = "work"
	}
	return base.JoinPath(section, slug).String(), nil
}

func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL).Start()
	case "windows":
		// rundll32 avoids cmd's shell interpretation of the URL
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	default:
		return exec.Command("xdg-open", rawURL).Start()
	}
}
