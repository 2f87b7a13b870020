package irload

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/verdict-engine/verdict/internal/ir"
)

// LoadMode controls how errors are handled during document loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Source is a sealed description of where an application document lives.
// The two concrete forms are FileSystemRef and InMemoryContent; the
// distinction is resolved here at the boundary so nothing downstream
// touches the filesystem.
type Source interface {
	isSource()
}

// FileSystemRef loads the CUE package rooted at Dir.
type FileSystemRef struct {
	Dir string
}

func (FileSystemRef) isSource() {}

// InMemoryContent loads CUE text supplied directly, keyed by a synthetic
// filename. Used by tests and by callers that already hold the document.
type InMemoryContent struct {
	Files map[string]string
}

func (InMemoryContent) isSource() {}

// Load builds the CUE value for the source, decodes the "application"
// field into an ApplicationIR, and validates it. In fail-fast mode the
// first error ends the load; in collect-all mode every validation error
// is returned together so a document author sees the full defect list.
func Load(src Source, mode LoadMode) (*ir.ApplicationIR, []error) {
	value, errs := buildValue(src)
	if len(errs) > 0 {
		return nil, errs
	}

	appVal := value.LookupPath(cue.ParsePath("application"))
	if !appVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeNoApplication, Message: "no application document found"}}
	}
	if err := appVal.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("resolving application: %v", err)}}
	}

	// Bridge through JSON so the document lands in the same decoder the
	// rest of the system uses, constraint value types included.
	data, err := appVal.MarshalJSON()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("encoding application: %v", err)}}
	}
	var app ir.ApplicationIR
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding application: %v", err)}}
	}

	if verrs := ir.Validate(&app); len(verrs) > 0 {
		if mode == LoadModeFailFast {
			return nil, []error{validationError(verrs[0])}
		}
		out := make([]error, 0, len(verrs))
		for _, ve := range verrs {
			out = append(out, validationError(ve))
		}
		return nil, out
	}

	return &app, nil
}

func buildValue(src Source) (cue.Value, []error) {
	switch s := src.(type) {
	case FileSystemRef:
		return buildFromDir(s.Dir)
	case InMemoryContent:
		return buildFromMemory(s.Files)
	default:
		return cue.Value{}, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("unsupported source %T", src)}}
	}
}

func buildFromDir(dir string) (cue.Value, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return cue.Value{}, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document directory not found: %s", dir)}}
	}
	if err != nil {
		return cue.Value{}, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("accessing document directory: %v", err)}}
	}
	if !info.IsDir() {
		return cue.Value{}, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return cue.Value{}, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return cue.Value{}, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) > 0 && instances[0].Err == nil {
		value := cuecontext.New().BuildInstance(instances[0])
		if err := value.Err(); err != nil {
			return cue.Value{}, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
		}
		return value, nil
	}

	// Package-less documents cannot be loaded as an instance; compile
	// the discovered files directly, the same way in-memory sources are.
	files := make(map[string]string, len(cueFiles))
	for _, path := range cueFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return cue.Value{}, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}}
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		files[filepath.ToSlash(rel)] = string(data)
	}
	return buildFromMemory(files)
}

func buildFromMemory(files map[string]string) (cue.Value, []error) {
	if len(files) == 0 {
		return cue.Value{}, []error{&LoadError{Code: ErrCodeNoFiles, Message: "no in-memory documents supplied"}}
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx := cuecontext.New()
	value := ctx.CompileString("", cue.Filename(names[0]))
	for _, name := range names {
		v := ctx.CompileString(files[name], cue.Filename(name))
		if err := v.Err(); err != nil {
			return cue.Value{}, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("compiling %s: %v", name, err)}}
		}
		value = value.Unify(v)
	}
	if err := value.Err(); err != nil {
		return cue.Value{}, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("unifying documents: %v", err)}}
	}
	return value, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
