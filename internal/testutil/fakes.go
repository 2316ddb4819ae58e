package testutil

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"greenjobs_backend/internal/email"
	"greenjobs_backend/internal/storage"
)

// RecordingProvider запоминает письма вместо отправки
type RecordingProvider struct {
	mu   sync.Mutex
	sent []*email.Email
	Err  error // если задано, Send возвращает эту ошибку
}

func (p *RecordingProvider) Name() string { return "recording" }

func (p *RecordingProvider) Send(ctx context.Context, msg *email.Email) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	return nil
}

// Sent - копия отправленных писем
func (p *RecordingProvider) Sent() []*email.Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*email.Email, len(p.sent))
	copy(out, p.sent)
	return out
}

// SentTo - письма одному адресату
func (p *RecordingProvider) SentTo(addr string) []*email.Email {
	var out []*email.Email
	for _, m := range p.Sent() {
		for _, to := range m.To {
			if strings.EqualFold(to, addr) {
				out = append(out, m)
			}
		}
	}
	return out
}

func (p *RecordingProvider) Reset() {
	p.mu.Lock()
	p.sent = nil
	p.mu.Unlock()
}

// MemoryStorage - storage.Storage в памяти
type MemoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	types map[string]string
	// FailSave возвращает ошибку для пути (имитация сбоя хранилища)
	FailSave func(path string) error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: map[string][]byte{}, types: map[string]string{}}
}

func (s *MemoryStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	if s.FailSave != nil {
		if err := s.FailSave(path); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
	s.types[path] = contentType
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	delete(s.types, path)
	return nil
}

func (s *MemoryStorage) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok, nil
}

func (s *MemoryStorage) GetURL(path string) string {
	return "/files/" + path
}

func (s *MemoryStorage) GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.GetURL(path), nil
}

func (s *MemoryStorage) Provider() string { return "memory" }

// Paths - сохраненные пути, по алфавиту
func (s *MemoryStorage) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (s *MemoryStorage) ContentType(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[path]
}

// PNGBytes - однотонная картинка w x h
func PNGBytes(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 46, G: 125, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// PDFBytes - минимальное содержимое с сигнатурой PDF
func PDFBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n")
}

// ZipBytes - zip-архив с пустыми файлами names (в указанном порядке)
func ZipBytes(names ...string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		_, _ = w.Write([]byte("<xml/>"))
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// DOCXBytes - минимальный OOXML документ Word
func DOCXBytes() []byte {
	return ZipBytes("[Content_Types].xml", "_rels/.rels", "word/document.xml")
}

// OLEBytes - заголовок составного документа (старый .doc)
func OLEBytes() []byte {
	head := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	return append(head, make([]byte, 1024)...)
}

// ELFBytes - заголовок исполняемого файла
func ELFBytes() []byte {
	head := []byte{0x7F, 'E', 'L', 'F', 2, 1, 1, 0}
	return append(head, make([]byte, 256)...)
}
