package service

import (
	"testing"

	"github.com/examhall/examhall-backend/internal/model"
)

func TestFileTypeFromMIME(t *testing.T) {
	cases := []struct {
		mime     string
		filename string
		want     model.DocumentFileType
	}{
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "plan.xlsx", model.FileTypeExcel},
		{"application/vnd.ms-excel", "legacy.xls", model.FileTypeExcel},
		{"text/csv", "grades.csv", model.FileTypeExcel},
		{"application/octet-stream", "grades.csv", model.FileTypeExcel},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "notes.docx", model.FileTypeWord},
		{"application/msword", "notes.doc", model.FileTypeWord},
		{"application/vnd.openxmlformats-officedocument.presentationml.presentation", "slides.pptx", model.FileTypePowerPoint},
		{"application/vnd.ms-powerpoint", "slides.ppt", model.FileTypePowerPoint},
		{"application/pdf", "schedule.pdf", model.FileTypePDF},
		{"application/octet-stream", "schedule.pdf", model.FileTypePDF},
		{"image/png", "photo.png", model.FileTypeOther},
		{"", "", model.FileTypeOther},
	}

	for _, c := range cases {
		if got := fileTypeFromMIME(c.mime, c.filename); got != c.want {
			t.Errorf("fileTypeFromMIME(%q, %q) = %q, want %q", c.mime, c.filename, got, c.want)
		}
	}
}
