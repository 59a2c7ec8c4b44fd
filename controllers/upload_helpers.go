package controllers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"thesis-verification-api/services"
	"thesis-verification-api/utils"

	"github.com/gin-gonic/gin"
)

// readUpload reads one multipart file. At most MaxDocumentSize+1 bytes are
// read so the size check downstream can still refuse oversized uploads.
func readUpload(c *gin.Context, field string) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, &services.ValidationError{Field: field, Msg: "file is required"}
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxDocumentSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload %s: %w", field, err)
	}
	return filepath.Base(fh.Filename), data, nil
}

// verificationRequestFromForm builds a VerificationRequest from the
// multipart form fields and the "file" part.
func verificationRequestFromForm(c *gin.Context) (services.VerificationRequest, error) {
	name, data, err := readUpload(c, "file")
	if err != nil {
		return services.VerificationRequest{}, err
	}
	year, ok := utils.ParseSubmissionYear(c.PostForm("submission_year"))
	if !ok {
		return services.VerificationRequest{}, &services.ValidationError{Field: "submission_year", Msg: "invalid year"}
	}
	abstract := c.PostForm("abstract")
	if abstract == "" {
		abstract = c.PostForm("abstract_text")
	}
	return services.VerificationRequest{
		Title:          utils.SanitizeInput(c.PostForm("title")),
		Author:         utils.SanitizeInput(c.PostForm("author")),
		Department:     utils.SanitizeInput(c.PostForm("department")),
		Institution:    utils.SanitizeInput(c.PostForm("institution")),
		Supervisor:     utils.SanitizeInput(c.PostForm("supervisor")),
		SubmissionYear: year,
		AbstractText:   strings.TrimSpace(abstract),
		Keywords:       utils.SplitKeywords(c.PostForm("keywords")),
		FileName:       name,
		Content:        data,
	}, nil
}
