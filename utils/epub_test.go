package utils

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func buildEPUB(t *testing.T, opf string, extra map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string][]byte{
		"mimetype":               []byte("application/epub+zip"),
		"META-INF/container.xml": []byte(containerXML),
		"OEBPS/content.opf":      []byte(opf),
	}
	for k, v := range extra {
		files[k] = v
	}
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadEPUB_ISBNAndMetadata(t *testing.T) {
	opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
  <metadata>
    <dc:title> The Left Hand of Darkness </dc:title>
    <dc:creator>Ursula K. Le Guin</dc:creator>
    <dc:description>A winter world.</dc:description>
    <dc:identifier id="uid">urn:uuid:0b1c</dc:identifier>
    <dc:identifier opf:scheme="ISBN">978-0-441-47812-5</dc:identifier>
    <meta name="cover" content="cover-img"/>
  </metadata>
  <manifest>
    <item id="cover-img" href="images/cover.jpg" media-type="image/jpeg"/>
  </manifest>
</package>`
	data := buildEPUB(t, opf, map[string][]byte{"OEBPS/images/cover.jpg": []byte("JPEGDATA")})

	e, err := ReadEPUB(data)
	require.NoError(t, err)
	assert.Equal(t, "The Left Hand of Darkness", e.Title())
	assert.Equal(t, "Ursula K. Le Guin", e.Author())
	assert.Equal(t, "A winter world.", e.Description())

	isbn, err := e.ISBN()
	require.NoError(t, err)
	assert.Equal(t, "9780441478125", isbn)

	cover, mediaType, err := e.Cover()
	require.NoError(t, err)
	assert.Equal(t, []byte("JPEGDATA"), cover)
	assert.Equal(t, "image/jpeg", mediaType)
}

func TestReadEPUB_EPUB3Refines(t *testing.T) {
	opf := `<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="3.0">
  <metadata>
    <dc:identifier id="pub-id">0-441-47812-X</dc:identifier>
    <meta refines="#pub-id" property="identifier-type">ISBN</meta>
  </metadata>
  <manifest>
    <item id="c" href="cover.png" media-type="image/png" properties="cover-image"/>
  </manifest>
</package>`
	data := buildEPUB(t, opf, map[string][]byte{"OEBPS/cover.png": []byte("PNG")})

	e, err := ReadEPUB(data)
	require.NoError(t, err)
	isbn, err := e.ISBN()
	require.NoError(t, err)
	assert.Equal(t, "044147812X", isbn)

	cover, mediaType, err := e.Cover()
	require.NoError(t, err)
	assert.Equal(t, []byte("PNG"), cover)
	assert.Equal(t, "image/png", mediaType)
}

func TestReadEPUB_NoISBN(t *testing.T) {
	opf := `<package><metadata><dc:identifier xmlns:dc="http://purl.org/dc/elements/1.1/">urn:uuid:abc</dc:identifier></metadata></package>`
	e, err := ReadEPUB(buildEPUB(t, opf, nil))
	require.NoError(t, err)

	_, err = e.ISBN()
	assert.ErrorIs(t, err, ErrNoISBN)

	_, _, err = e.Cover()
	assert.Error(t, err)
}

func TestReadEPUB_EntrySizeCap(t *testing.T) {
	old := maxEntrySize
	maxEntrySize = 1024
	t.Cleanup(func() { maxEntrySize = old })

	opf := `<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>
    <item id="c" href="cover.png" media-type="image/png" properties="cover-image"/>
  </manifest>
</package>`
	data := buildEPUB(t, opf, map[string][]byte{"OEBPS/cover.png": bytes.Repeat([]byte{0}, 4096)})

	e, err := ReadEPUB(data)
	require.NoError(t, err)
	_, _, err = e.Cover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestReadEPUB_Invalid(t *testing.T) {
	_, err := ReadEPUB(nil)
	assert.Error(t, err)

	_, err = ReadEPUB([]byte("definitely not a zip"))
	assert.Error(t, err)
}

func TestSanitizeISBN(t *testing.T) {
	assert.Equal(t, "9780441478125", sanitizeISBN("ISBN 978-0-441-47812-5"))
	assert.Equal(t, "044147812X", sanitizeISBN("0-441-47812-x"))
	assert.True(t, isValidISBN("044147812X"))
	assert.False(t, isValidISBN("12345"))
}
