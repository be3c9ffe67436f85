package routes

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rm-hull/alphablend/internal/codec"
	"github.com/rm-hull/alphablend/internal/composite"
	"github.com/rm-hull/alphablend/internal/pipeline"
	"github.com/rm-hull/alphablend/internal/resample"
)

// Process handles POST /v1/process. The multipart body carries the base "image" and any
// number of "overlay" parts, composited in the order given. Query parameters: width and
// height (together), kernel, blur (default true) and format (default png).
func Process(c *gin.Context) {
	format, err := codec.ParseFormat(c.DefaultQuery("format", string(codec.PNG)))
	if err != nil || !format.Encodable() {
		abort(c, http.StatusBadRequest, fmt.Errorf("unsupported output format: %q", c.Query("format")))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("expected multipart form: %w", err))
		return
	}
	images := form.File["image"]
	if len(images) != 1 {
		abort(c, http.StatusBadRequest, errors.New("exactly one image part is required"))
		return
	}

	src, closeSrc, err := open(images[0])
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	defer closeSrc()

	b := pipeline.New(src)

	if err := applyResize(c, b); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if kernel := c.Query("kernel"); kernel != "" {
		b.InterpolateWith(kernel)
	}

	for _, fh := range form.File["overlay"] {
		overlay, closeOverlay, err := open(fh)
		if err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
		defer closeOverlay()
		b.OverlayWith(overlay)
	}

	data, info, err := b.ToBuffer(c.Request.Context(), format)
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}

	c.Header("X-Image-Width", strconv.Itoa(info.Width))
	c.Header("X-Image-Height", strconv.Itoa(info.Height))
	c.Header("X-Image-Channels", strconv.Itoa(info.Channels))
	c.Data(http.StatusOK, format.ContentType(), data)
}

func applyResize(c *gin.Context, b *pipeline.Builder) error {
	w, h := c.Query("width"), c.Query("height")
	if w == "" && h == "" {
		return nil
	}
	if w == "" || h == "" {
		return errors.New("width and height must be given together")
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return fmt.Errorf("invalid width: %w", err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return fmt.Errorf("invalid height: %w", err)
	}
	blur, err := strconv.ParseBool(c.DefaultQuery("blur", "true"))
	if err != nil {
		return fmt.Errorf("invalid blur flag: %w", err)
	}
	b.Resize(width, height, pipeline.WithGaussianBlur(blur))
	return nil
}

func open(fh *multipart.FileHeader) (codec.Source, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return codec.FromReader(fh.Filename, f), func() { _ = f.Close() }, nil
}

func statusFor(err error) int {
	var (
		dimErr    *resample.InvalidDimensionsError
		kernelErr *resample.UnknownKernelError
		decodeErr *codec.DecodeError
	)
	switch {
	case errors.As(err, &dimErr), errors.As(err, &kernelErr), errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.Is(err, composite.ErrMissingAlpha):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Printf("Failed to process image: %v", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
