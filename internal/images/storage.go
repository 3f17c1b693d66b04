package images

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"campsite/pkg/model"
)

// Upload is one inbound file as handed over by the multipart form: the
// stream and the client-side name, which only contributes its extension.
type Upload struct {
	File io.Reader
	Name string
}

// Storage is the image storage collaborator: it accepts an upload and
// returns a public URL plus the storage key used for later deletion.
type Storage interface {
	Store(ctx context.Context, file io.Reader, originalName string) (model.Image, error)
	Remove(ctx context.Context, filename string) error
	Open(ctx context.Context, filename string) ([]byte, string, error)
}

type gridFSStorage struct {
	db *mongo.Database
}

func NewGridFSStorage(db *mongo.Database) Storage {
	return &gridFSStorage{db: db}
}

// Store writes the upload under a fresh key; the original name only
// contributes its extension.
func (s *gridFSStorage) Store(ctx context.Context, file io.Reader, originalName string) (model.Image, error) {
	bucket, err := gridfs.NewBucket(s.db)
	if err != nil {
		return model.Image{}, fmt.Errorf("failed to open image bucket: %w", err)
	}

	key := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))

	stream, err := bucket.OpenUploadStream(key)
	if err != nil {
		return model.Image{}, fmt.Errorf("failed to open upload stream: %w", err)
	}
	defer stream.Close()

	if _, err := io.Copy(stream, file); err != nil {
		return model.Image{}, fmt.Errorf("failed to store image: %w", err)
	}

	return model.Image{
		URL:      "/images/" + key,
		Filename: key,
	}, nil
}

func (s *gridFSStorage) Remove(ctx context.Context, filename string) error {
	bucket, err := gridfs.NewBucket(s.db)
	if err != nil {
		return fmt.Errorf("failed to open image bucket: %w", err)
	}

	cursor, err := bucket.Find(bson.M{"filename": filename})
	if err != nil {
		return fmt.Errorf("failed to look up image %s: %w", filename, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var file struct {
			ID any `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			return fmt.Errorf("failed to decode image record: %w", err)
		}
		if err := bucket.Delete(file.ID); err != nil {
			return fmt.Errorf("failed to delete image %s: %w", filename, err)
		}
	}

	return cursor.Err()
}

// Open returns the stored bytes and a content type guessed from the key's
// extension.
func (s *gridFSStorage) Open(ctx context.Context, filename string) ([]byte, string, error) {
	bucket, err := gridfs.NewBucket(s.db)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image bucket: %w", err)
	}

	stream, err := bucket.OpenDownloadStreamByName(filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image %s: %w", filename, err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image %s: %w", filename, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}
