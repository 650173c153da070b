package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"

	"github.com/agiliza2b-source/tasks2/domain"
)

// ListAttachments returns a task's attachments, newest first.
func (s *Storage) ListAttachments(ctx context.Context, userID, taskID string) ([]domain.Attachment, error) {
	filter := ownerFilter(userID) + " and TaskID eq '" + taskID + "'"
	pager := s.attachments.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	out := []domain.Attachment{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent attachmentEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			out = append(out, ent.toDomain())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UploadAttachment streams the file into the blob container under a
// collision-free path, records the reference row and returns it. Files
// over the size cap are rejected before any byte is uploaded.
func (s *Storage) UploadAttachment(ctx context.Context, userID, taskID, fileName, fileType string, data []byte) (domain.Attachment, error) {
	if int64(len(data)) > domain.MaxAttachmentSize {
		return domain.Attachment{}, fmt.Errorf("file exceeds %d byte limit", domain.MaxAttachmentSize)
	}

	ext := strings.TrimPrefix(path.Ext(fileName), ".")
	blobName := taskID + "/" + uuid.NewString()
	if ext != "" {
		blobName += "." + ext
	}

	if _, err := s.blobs.UploadBuffer(ctx, s.container, blobName, data, nil); err != nil {
		return domain.Attachment{}, err
	}

	att := domain.Attachment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		UserID:    userID,
		FileName:  fileName,
		FileURL:   s.publicURL(blobName),
		FileSize:  int64(len(data)),
		FileType:  fileType,
		CreatedAt: s.now().UTC(),
	}
	payload, err := json.Marshal(attachmentToEntity(att))
	if err != nil {
		return domain.Attachment{}, err
	}
	if _, err := s.attachments.AddEntity(ctx, payload, nil); err != nil {
		return domain.Attachment{}, err
	}
	return att, nil
}

// DeleteAttachment removes the reference row. The blob itself is left in
// place; orphaned blobs are reclaimed out of band.
func (s *Storage) DeleteAttachment(ctx context.Context, userID, id string) error {
	_, err := s.attachments.DeleteEntity(ctx, userID, id, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

func (s *Storage) publicURL(blobName string) string {
	return strings.TrimSuffix(s.blobs.URL(), "/") + "/" + s.container + "/" + blobName
}
