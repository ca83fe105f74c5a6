package images

import (
	"context"
	"io"
	"log"
	"mime/multipart"

	"github.com/h2non/bimg"
)

const thumbWidth = 320

// Upload stores one multipart image upload: the original under a
// timestamp-keyed path and a resized thumbnail alongside it. It returns
// the original's key.
func Upload(ctx context.Context, st Storage, file multipart.File, header *multipart.FileHeader) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	contentType := header.Header.Get("Content-Type")
	key := TimestampKey(header.Filename)
	if err := st.Save(ctx, key, data, contentType); err != nil {
		return "", err
	}
	thumb, err := bimg.NewImage(data).Process(bimg.Options{Width: thumbWidth})
	if err != nil {
		// The original is stored; a listing without a thumbnail beats
		// a failed upload.
		log.Println("thumbnail generation failed:", err)
		return key, nil
	}
	if err := st.Save(ctx, ThumbKey(key), thumb, contentType); err != nil {
		log.Println("thumbnail upload failed:", err)
	}
	return key, nil
}

// Remove deletes a stored image and its thumbnail.
func Remove(ctx context.Context, st Storage, key string) {
	if key == "" {
		return
	}
	if err := st.Delete(ctx, key); err != nil {
		log.Println("failed to delete image:", err)
	}
	if err := st.Delete(ctx, ThumbKey(key)); err != nil {
		log.Println("failed to delete thumbnail:", err)
	}
}
