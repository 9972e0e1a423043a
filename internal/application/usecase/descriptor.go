package usecase

import (
	"strings"

	"postbridge/internal/domain/dto"
	"postbridge/internal/domain/model"
	"postbridge/pkg/utils"
)

func toDescriptor(f *model.File, address string) dto.FileDescriptor {
	return dto.FileDescriptor{
		ID:       f.ID,
		URL:      strings.TrimRight(address, "/") + "/files/" + f.ID + utils.GetExtensionFromMimeType(f.MimeType),
		Sha256:   f.Digest,
		Filename: f.Filename,
		FileType: f.MimeType,
		AltText:  f.AltText,
		Width:    f.Width,
		Height:   f.Height,
		Size:     f.Size,
		Uploaded: f.CreatedAt.Unix(),
	}
}
