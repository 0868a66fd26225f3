package cloudinaryclient

import (
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
)

type CloudinaryClient struct {
	*cloudinary.Cloudinary
}

// New builds a client from a cloudinary://<key>:<secret>@<cloud> URL.
func New(url string) (*CloudinaryClient, error) {
	if url == "" {
		return nil, fmt.Errorf("CloudinaryClient - New: empty url")
	}

	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("CloudinaryClient - New - cloudinary.NewFromURL: %w", err)
	}

	cld.Config.URL.Secure = true

	return &CloudinaryClient{cld}, nil
}
