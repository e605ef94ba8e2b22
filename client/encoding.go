package client

import (
	"encoding/base64"
	"fmt"
	"regexp"

	"whisk-action-client/models"
)

// Runtime kinds follow the "language:version" convention, plus the
// free-form "blackbox" kind for container actions.
var kindPattern = regexp.MustCompile(`^[a-z0-9]+:[A-Za-z0-9.\-]+$`)

// InlineExec builds the executable representation for inline source code.
// An empty kind falls back to models.DefaultExecKind.
func InlineExec(code, kind string) (*models.Exec, error) {
	if code == "" {
		return nil, fmt.Errorf("inline source is empty: %w", ErrInvalidPayload)
	}
	kind, err := normalizeKind(kind)
	if err != nil {
		return nil, err
	}
	return &models.Exec{Kind: kind, Code: code}, nil
}

// ArchiveExec builds the executable representation for a pre-built archive.
// The bytes are passed through opaquely — never inspected — and are always
// transmitted base64-encoded with the binary flag set, so binary payloads
// survive the JSON body. main names the entry point inside the bundle.
func ArchiveExec(archive []byte, kind, main string) (*models.Exec, error) {
	if len(archive) == 0 {
		return nil, fmt.Errorf("archive is empty: %w", ErrInvalidPayload)
	}
	kind, err := normalizeKind(kind)
	if err != nil {
		return nil, err
	}
	if main == "" {
		main = "main"
	}
	return &models.Exec{
		Kind:   kind,
		Code:   base64.StdEncoding.EncodeToString(archive),
		Main:   main,
		Binary: true,
	}, nil
}

func normalizeKind(kind string) (string, error) {
	if kind == "" {
		return models.DefaultExecKind, nil
	}
	if kind == "blackbox" || kindPattern.MatchString(kind) {
		return kind, nil
	}
	return "", fmt.Errorf("unsupported exec kind %q: %w", kind, ErrInvalidPayload)
}
