// Package bundle implements the archive interchange format for
// package-style deployments: a zip holding a manifest plus source files.
package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ManifestName is the well-known manifest file at the bundle root.
const ManifestName = "manifest.json"

// Manifest declares the bundle's entry point and contents. The shape is a
// fixed contract shared with the control plane, not re-derived per call.
type Manifest struct {
	Entry string   `json:"entry"`
	Files []string `json:"files"`
}

// Build produces a bundle from the given files. entry must name one of
// them; ManifestName is reserved. File order inside the archive is sorted
// so identical inputs produce identical bundles.
func Build(entry string, files map[string][]byte) ([]byte, error) {
	if entry == "" {
		return nil, fmt.Errorf("bundle entry point is required")
	}
	if _, ok := files[entry]; !ok {
		return nil, fmt.Errorf("entry point %q is not among the bundled files", entry)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		if name == ManifestName {
			return nil, fmt.Errorf("%s is reserved for the generated manifest", ManifestName)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	manifest, err := json.Marshal(Manifest{Entry: entry, Files: names})
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	mw, err := w.Create(ManifestName)
	if err != nil {
		return nil, err
	}
	if _, err := mw.Write(manifest); err != nil {
		return nil, err
	}
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadManifest extracts and validates the manifest from bundle bytes. The
// declared entry point must be present in the archive.
func ReadManifest(archive []byte) (*Manifest, error) {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}

	var manifest *Manifest
	present := make(map[string]bool, len(r.File))
	for _, f := range r.File {
		present[f.Name] = true
		if f.Name != ManifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ManifestName, err)
		}
		manifest = &m
	}

	if manifest == nil {
		return nil, fmt.Errorf("bundle has no %s", ManifestName)
	}
	if manifest.Entry == "" {
		return nil, fmt.Errorf("%s declares no entry point", ManifestName)
	}
	if !present[manifest.Entry] {
		return nil, fmt.Errorf("entry point %q missing from bundle", manifest.Entry)
	}
	return manifest, nil
}
