package loader

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupportedFile is returned when no page loader is registered for a file type.
var ErrUnsupportedFile = errors.New("unsupported file type")

type DocumentFileType string

const (
	DocumentFileTypePDF  DocumentFileType = "pdf"
	DocumentFileTypeDocx DocumentFileType = "docx"
	DocumentFileTypeText DocumentFileType = "text"
	DocumentFileTypeHTML DocumentFileType = "html"
	DocumentFileTypeCSV  DocumentFileType = "csv"
)

// Page is the raw text of one page of a document. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// DocumentFile represents a source document that can be turned into pages.
// Name is the document identifier used in graph node ids and in the output
// record; it is the base name of the file.
//
// The raw bytes are retrieved via the associated FileLoader.
type DocumentFile struct {
	ID       string
	Name     string
	FilePath string
	FileType DocumentFileType
	Loader   FileLoader
}

// NewDocumentFileParams defines the input parameters for creating a new
// DocumentFile.
type NewDocumentFileParams struct {
	ID       string
	Name     string
	FilePath string
	Loader   FileLoader
}

// NewDocumentFile creates a DocumentFile and derives its type from the file
// extension. The second return value is false if the extension is not supported.
func NewDocumentFile(params NewDocumentFileParams) (DocumentFile, bool) {
	fileType, ok := DetectFileType(params.FilePath)
	if !ok {
		return DocumentFile{}, false
	}
	name := params.Name
	if name == "" {
		name = BaseName(params.FilePath)
	}
	return DocumentFile{
		ID:       params.ID,
		Name:     name,
		FilePath: params.FilePath,
		FileType: fileType,
		Loader:   params.Loader,
	}, true
}

// GetBytes retrieves the raw content of the file using its Loader.
func (f *DocumentFile) GetBytes(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, fmt.Errorf("no loader configured for %s", f.FilePath)
	}
	return f.Loader.GetFileBytes(ctx, *f)
}

// FileLoader loads the raw bytes of a DocumentFile.
// Implementations may load files from disk, object storage, or other sources.
type FileLoader interface {
	GetFileBytes(ctx context.Context, file DocumentFile) ([]byte, error)
}

// PageLoader turns a DocumentFile into its ordered, non-empty pages.
type PageLoader interface {
	GetPages(ctx context.Context, file DocumentFile) ([]Page, error)
}

// DocumentSource discovers the documents of one ranking run.
type DocumentSource interface {
	ListDocuments(ctx context.Context) ([]DocumentFile, error)
}

// Registry dispatches page extraction to the PageLoader registered for
// a file's type.
type Registry struct {
	loaders map[DocumentFileType]PageLoader
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[DocumentFileType]PageLoader)}
}

// Register sets the PageLoader for a file type, replacing any previous one.
func (r *Registry) Register(fileType DocumentFileType, l PageLoader) *Registry {
	r.loaders[fileType] = l
	return r
}

// GetPages implements PageLoader.
func (r *Registry) GetPages(ctx context.Context, file DocumentFile) ([]Page, error) {
	l, ok := r.loaders[file.FileType]
	if !ok {
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFile, file.FileType, file.FilePath)
	}
	return l.GetPages(ctx, file)
}
