package utils

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var ErrNoISBN = errors.New("no ISBN found in EPUB metadata")

// maxEntrySize caps how much a single zip entry may decompress to.
var maxEntrySize int64 = 16 << 20

type epubContainer struct {
	RootFiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// opfPackage is the part of the OPF package document we read. Element names match
// regardless of namespace prefix, so <dc:identifier> lands in Identifiers.
type opfPackage struct {
	Metadata struct {
		Titles      []string `xml:"title"`
		Creators    []string `xml:"creator"`
		Description string   `xml:"description"`
		Identifiers []struct {
			ID     string `xml:"id,attr"`
			Scheme string `xml:"scheme,attr"`
			Value  string `xml:",chardata"`
		} `xml:"identifier"`
		Meta []struct {
			Name     string `xml:"name,attr"`
			Property string `xml:"property,attr"`
			Refines  string `xml:"refines,attr"`
			Content  string `xml:"content,attr"`
			Value    string `xml:",chardata"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
}

// EPUB is an opened EPUB archive with its package document parsed.
type EPUB struct {
	zr      *zip.Reader
	opfPath string
	pkg     opfPackage
}

// ReadEPUB opens an EPUB held in memory.
func ReadEPUB(data []byte) (*EPUB, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("uploaded file is empty")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid EPUB file (not a valid ZIP): %w", err)
	}
	containerXML, err := readZipFile(zr, "META-INF/container.xml")
	if err != nil {
		return nil, fmt.Errorf("read container.xml: %w", err)
	}
	var container epubContainer
	if err := xml.Unmarshal(containerXML, &container); err != nil {
		return nil, fmt.Errorf("parse container.xml: %w", err)
	}
	if len(container.RootFiles) == 0 {
		return nil, fmt.Errorf("no rootfile found in container.xml")
	}
	e := &EPUB{zr: zr, opfPath: normalizeZipPath(container.RootFiles[0].FullPath)}
	opf, err := readZipFile(zr, e.opfPath)
	if err != nil {
		return nil, fmt.Errorf("read OPF file: %w", err)
	}
	if err := xml.Unmarshal(opf, &e.pkg); err != nil {
		return nil, fmt.Errorf("parse OPF file: %w", err)
	}
	return e, nil
}

// Title returns the first dc:title, trimmed.
func (e *EPUB) Title() string {
	for _, t := range e.pkg.Metadata.Titles {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}

// Author returns all dc:creator values joined with ", ".
func (e *EPUB) Author() string {
	var names []string
	for _, c := range e.pkg.Metadata.Creators {
		if c = strings.TrimSpace(c); c != "" {
			names = append(names, c)
		}
	}
	return strings.Join(names, ", ")
}

func (e *EPUB) Description() string {
	return strings.TrimSpace(e.pkg.Metadata.Description)
}

// ISBN returns the book's ISBN (digits only). Identifiers with an explicit ISBN scheme win,
// then EPUB 3 identifier-type refinements, then any identifier that looks like an ISBN.
func (e *EPUB) ISBN() (string, error) {
	md := e.pkg.Metadata
	for _, id := range md.Identifiers {
		if isISBNScheme(id.Scheme) {
			if cleaned := sanitizeISBN(id.Value); isValidISBN(cleaned) {
				return cleaned, nil
			}
		}
	}
	for _, m := range md.Meta {
		prop := strings.ToLower(strings.TrimSpace(m.Property))
		if (prop != "identifier-type" && prop != "scheme") || !(isISBNScheme(m.Content) || isISBNScheme(m.Value)) {
			continue
		}
		ref := strings.TrimPrefix(strings.TrimSpace(m.Refines), "#")
		for _, id := range md.Identifiers {
			if id.ID == ref {
				if cleaned := sanitizeISBN(id.Value); isValidISBN(cleaned) {
					return cleaned, nil
				}
			}
		}
	}
	for _, id := range md.Identifiers {
		if cleaned := sanitizeISBN(id.Value); isValidISBN(cleaned) {
			return cleaned, nil
		}
	}
	return "", ErrNoISBN
}

// Cover returns the embedded cover image and its media type. EPUB 2 books name it with
// <meta name="cover">, EPUB 3 books flag a manifest item with properties="cover-image".
func (e *EPUB) Cover() ([]byte, string, error) {
	var coverID string
	for _, m := range e.pkg.Metadata.Meta {
		if strings.EqualFold(m.Name, "cover") && m.Content != "" {
			coverID = m.Content
			break
		}
	}
	var href, mediaType string
	for _, item := range e.pkg.Manifest.Items {
		if (coverID != "" && item.ID == coverID) || strings.Contains(item.Properties, "cover-image") {
			href, mediaType = item.Href, item.MediaType
			break
		}
	}
	if href == "" {
		return nil, "", fmt.Errorf("no cover in OPF manifest")
	}
	coverPath := path.Join(path.Dir(e.opfPath), normalizeZipPath(href))
	data, err := readZipFile(e.zr, coverPath)
	if err != nil {
		return nil, "", err
	}
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return data, mediaType, nil
}

func isISBNScheme(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "isbn", "isbn-10", "isbn-13":
		return true
	}
	return false
}

func normalizeZipPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// readZipFile reads an entry by path. Matching is case-insensitive and normalizes backslashes.
func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	name = normalizeZipPath(name)
	for _, f := range zr.File {
		if !strings.EqualFold(normalizeZipPath(f.Name), name) {
			continue
		}
		if f.UncompressedSize64 > uint64(maxEntrySize) {
			return nil, fmt.Errorf("zip entry %s is too large", name)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry: %w", err)
		}
		defer rc.Close()
		// The header size can lie, so the read is capped as well.
		data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
		if err != nil {
			return nil, fmt.Errorf("read zip entry: %w", err)
		}
		if int64(len(data)) > maxEntrySize {
			return nil, fmt.Errorf("zip entry %s is too large", name)
		}
		return data, nil
	}
	return nil, fmt.Errorf("file not found in zip: %s", name)
}

// sanitizeISBN keeps digits and a trailing ISBN-10 check character X.
func sanitizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(isbn) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case (r == 'X' || r == 'x') && b.Len() == 9:
			b.WriteRune('X')
		}
	}
	return b.String()
}

func isValidISBN(cleaned string) bool {
	return len(cleaned) == 10 || len(cleaned) == 13
}
