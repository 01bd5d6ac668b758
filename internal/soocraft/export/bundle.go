package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
	"github.com/outcome-tools/soocraft/internal/soocraft/audit"
)

var unsafeNameRe = regexp.MustCompile(`[^a-z0-9]+`)

// BundleFilename derives the archive name from the product name and a
// timestamp, e.g. soo_bundle_case_tracker_20260831T141530.zip.
func BundleFilename(s *answers.Store, now time.Time) string {
	name := strings.ToLower(strings.TrimSpace(s.Get("vision_moore", "product_name", "")))
	name = strings.Trim(unsafeNameRe.ReplaceAllString(name, "_"), "_")
	if name == "" {
		name = "untitled"
	}
	return fmt.Sprintf("soo_bundle_%s_%s.zip", name, now.Format("20060102T150405"))
}

// Artifacts renders every file of the deliverable bundle. promptsText
// comes from the draft pipeline so export stays decoupled from it.
func Artifacts(s *answers.Store, log *audit.Log, promptsText, wizardVersion string) (map[string][]byte, error) {
	soo := s.Get("soo_output", "soo_draft", "")
	if strings.TrimSpace(soo) == "" {
		return nil, fmt.Errorf("no SOO draft to export yet")
	}
	pack := PWSRequestPack(s)

	inputs, err := MarshalSnapshot(Snapshot(s, wizardVersion))
	if err != nil {
		return nil, fmt.Errorf("render inputs: %w", err)
	}
	auditJSON, err := log.ExportJSON()
	if err != nil {
		return nil, fmt.Errorf("render audit: %w", err)
	}

	title := value(s, "vision_moore", "product_name", "Statement of Objectives")
	return map[string][]byte{
		"soo.md":                []byte(soo),
		"soo.html":              []byte(ToHTML(soo, "Statement of Objectives: "+title)),
		"soo.rtf":               []byte(ToRTF(soo)),
		"pws_request_pack.md":   []byte(pack),
		"pws_request_pack.html": []byte(ToHTML(pack, "PWS Request Pack: "+title)),
		"pws_request_pack.rtf":  []byte(ToRTF(pack)),
		"source/inputs.yml":     inputs,
		"source/audit.json":     auditJSON,
		"source/prompts.txt":    []byte(promptsText),
	}, nil
}

// WriteBundle writes the zip archive to dir and returns its full path.
func WriteBundle(dir string, s *answers.Store, log *audit.Log, promptsText, wizardVersion string) (string, error) {
	files, err := Artifacts(s, log, promptsText, wizardVersion)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, BundleFilename(s, time.Now()))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	zw := zip.NewWriter(f)

	// Stable order keeps archives diffable between runs.
	names := []string{
		"soo.md", "soo.html", "soo.rtf",
		"pws_request_pack.md", "pws_request_pack.html", "pws_request_pack.rtf",
		"source/inputs.yml", "source/audit.json", "source/prompts.txt",
	}
	for _, name := range names {
		w, err := zw.Create(name)
		if err == nil {
			_, err = w.Write(files[name])
		}
		if err != nil {
			zw.Close()
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("bundle %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// WriteArtifact writes one named artifact to w. Used by the HTTP API to
// serve individual files without building the archive.
func WriteArtifact(w io.Writer, files map[string][]byte, name string) error {
	raw, ok := files[name]
	if !ok {
		return fmt.Errorf("unknown artifact %s", name)
	}
	_, err := w.Write(raw)
	return err
}
