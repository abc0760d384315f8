// Package schema loads and validates screen metadata documents.
//
// Metadata arrives as YAML or JSON files, one screen per file. Structural
// validation runs through an embedded CUE schema (field presence, types,
// enum values); cross-reference validation (widget -> BC links, parent
// chains, hierarchy levels) runs in Go over the decoded model.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/tesler-ui/datasync/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// metadataExtensions are the file extensions scanned for screen documents.
// JSON is a subset of YAML, so one decoder covers both.
var metadataExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// LoadScreen loads, validates, and decodes one screen document.
// Validation problems are returned as a single error wrapping every
// ValidationError found; the decoded screen is returned only when clean.
func LoadScreen(path string) (*model.ScreenMeta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read screen document: %w", err)
	}
	return ParseScreen(raw, path)
}

// ParseScreen validates and decodes one screen document from raw bytes.
// name identifies the document in error messages, usually its file path.
func ParseScreen(raw []byte, name string) (*model.ScreenMeta, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: parse: %w", name, err)
	}

	if errs := validateStructure(doc); len(errs) > 0 {
		return nil, &DocumentError{Name: name, Errors: errs}
	}

	var screen model.ScreenMeta
	if err := yaml.Unmarshal(raw, &screen); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", name, err)
	}

	if errs := validateReferences(&screen); len(errs) > 0 {
		return nil, &DocumentError{Name: name, Errors: errs}
	}
	return &screen, nil
}

// LoadScreens loads every metadata document under dir, sorted by path for
// deterministic ordering. All documents are attempted; errors accumulate
// per document.
func LoadScreens(dir string) ([]model.ScreenMeta, []error) {
	paths, err := findDocuments(dir)
	if err != nil {
		return nil, []error{err}
	}
	if len(paths) == 0 {
		return nil, []error{fmt.Errorf("no metadata documents found in %s", dir)}
	}

	var screens []model.ScreenMeta
	var errs []error
	for _, path := range paths {
		screen, err := LoadScreen(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		screens = append(screens, *screen)
	}
	return screens, errs
}

func findDocuments(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("metadata directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var paths []string
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && metadataExtensions[filepath.Ext(path)] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan metadata directory: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// validateStructure unifies a decoded document with the #Screen schema and
// converts CUE's error list into ValidationErrors.
func validateStructure(doc any) []ValidationError {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(schemaCUE)
	if err := schemaVal.Err(); err != nil {
		// The embedded schema is part of the binary; failing to compile it
		// is a programming error, not a document error.
		panic(fmt.Sprintf("schema: embedded schema.cue does not compile: %v", err))
	}

	screenSchema := schemaVal.LookupPath(cue.ParsePath("#Screen"))
	unified := screenSchema.Unify(ctx.Encode(doc))

	// Concrete validation makes missing required fields (left non-concrete
	// by unification) fail alongside outright type conflicts.
	err := unified.Validate(cue.Concrete(true), cue.Final())
	if err == nil {
		return nil
	}

	var errs []ValidationError
	for _, e := range cueerrors.Errors(err) {
		path := cueerrors.Path(e)
		errs = append(errs, ValidationError{
			Field:   joinPath(path),
			Message: e.Error(),
			Code:    ErrSchemaMismatch,
		})
	}
	return errs
}

func joinPath(parts []string) string {
	if len(parts) == 0 {
		return "(document)"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "." + p
	}
	return out
}
