package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestFileTypeFromName(t *testing.T) {
	cases := map[string]string{
		"essay.pdf":    FileTypePDF,
		"Essay.PDF":    FileTypePDF,
		"thesis.docx":  FileTypeDOCX,
		"old_memo.doc": FileTypeDOC,
	}
	for name, want := range cases {
		got, err := FileTypeFromName(name)
		if err != nil {
			t.Fatalf("FileTypeFromName(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("FileTypeFromName(%q) = %q, want %q", name, got, want)
		}
	}

	if _, err := FileTypeFromName("notes.txt"); err == nil {
		t.Fatal("expected error for .txt")
	}
}

func TestTextDocxParagraphs(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	out, err := Text(buildDocx(t, docXML), FileTypeDOCX)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(out, "First paragraph.") || !strings.Contains(out, "Second paragraph.") {
		t.Fatalf("missing paragraph text: %q", out)
	}
	if !strings.Contains(out, "First paragraph.\n") {
		t.Fatalf("paragraphs not newline separated: %q", out)
	}
}

func TestTextDocxMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, err := Text(buf.Bytes(), FileTypeDOCX); err == nil {
		t.Fatal("expected error for zip without document.xml")
	}
}

func TestTextDocReturnsFixedMessage(t *testing.T) {
	out, err := Text([]byte("irrelevant"), FileTypeDOC)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if out != DOCUnsupportedMessage {
		t.Fatalf("unexpected message: %q", out)
	}
}

func TestTextInvalidPDF(t *testing.T) {
	if _, err := Text([]byte("not a pdf"), FileTypePDF); err == nil {
		t.Fatal("expected error for invalid pdf data")
	}
}

func TestTextUnknownType(t *testing.T) {
	if _, err := Text([]byte("x"), "rtf"); err == nil {
		t.Fatal("expected error for unknown file type")
	}
}
