package handler

import (
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sketchtalk/sketchtalk/internal/service"
)

type formImage struct {
	service.NewImage
	file multipart.File
}

func (f *formImage) close() {
	if f.file != nil {
		_ = f.file.Close()
	}
}

// imageFromForm pulls the uploaded drawing out of the multipart request.
func imageFromForm(c *gin.Context) (*formImage, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("an image file is required")
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("could not read uploaded image")
	}

	return &formImage{
		NewImage: service.NewImage{
			Reader:   file,
			FileName: header.Filename,
		},
		file: file,
	}, nil
}

func postIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id")
	}
	return uint(id), nil
}
