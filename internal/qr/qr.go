// Package qr produces payment-link QR images for cookie sales and stores
// them in S3.
package qr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	codeSize   = 512
	canvasSize = 600
)

// Uploader is the slice of the S3 service the generator needs.
type Uploader interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) error
	ObjectURL(key string) string
}

type PaymentLink struct {
	URL      string `json:"url"`
	ImageKey string `json:"image_key"`
	ImageURL string `json:"image_url"`
}

type Generator struct {
	uploader Uploader
	baseURL  string
	now      func() time.Time
}

func NewGenerator(uploader Uploader, baseURL string) *Generator {
	return &Generator{
		uploader: uploader,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// GeneratePaymentLink builds the checkout URL for a scout's sale, renders it
// as a QR image on a white canvas and uploads the image.
func (g *Generator) GeneratePaymentLink(ctx context.Context, troopID, scoutID uuid.UUID, amountCents int) (*PaymentLink, error) {
	payURL, err := g.buildURL(troopID, scoutID, amountCents)
	if err != nil {
		return nil, err
	}

	img, err := renderCode(payURL)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("payments/qr/%s/%s-%d.png", troopID, scoutID, g.now().UnixMilli())
	if err := g.uploader.PutObject(ctx, key, bytes.NewReader(img), "image/png"); err != nil {
		return nil, fmt.Errorf("failed to store QR image: %w", err)
	}

	return &PaymentLink{
		URL:      payURL,
		ImageKey: key,
		ImageURL: g.uploader.ObjectURL(key),
	}, nil
}

func (g *Generator) buildURL(troopID, scoutID uuid.UUID, amountCents int) (string, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid payment base URL %q: %w", g.baseURL, err)
	}
	u.Path = "/pay"

	q := u.Query()
	q.Set("troop", troopID.String())
	q.Set("scout", scoutID.String())
	q.Set("amount", strconv.Itoa(amountCents))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func renderCode(content string) ([]byte, error) {
	raw, err := qrcode.Encode(content, qrcode.Medium, codeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	code, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR image: %w", err)
	}

	// Quiet zone around the code so scanners pick it up on busy screens.
	canvas := imaging.New(canvasSize, canvasSize, color.White)
	canvas = imaging.PasteCenter(canvas, code)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode QR canvas: %w", err)
	}

	return buf.Bytes(), nil
}

// decodeBounds is used by tests to assert on the rendered image.
func decodeBounds(data []byte) (image.Rectangle, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return image.Rectangle{}, err
	}
	return img.Bounds(), nil
}
