package storage

import (
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"github.com/agiliza2b-source/tasks2/domain"
)

// Table rows store times as RFC 3339 strings to keep entity payloads
// free of Edm type annotations.

type taskEntity struct {
	aztables.Entity
	Title         string `json:"Title"`
	Description   string `json:"Description,omitempty"`
	ColumnID      string `json:"ColumnID"`
	Status        string `json:"Status"`
	Priority      string `json:"Priority"`
	Color         string `json:"Color,omitempty"`
	AssignedTo    string `json:"AssignedTo,omitempty"`
	DueDate       string `json:"DueDate,omitempty"`
	IsTemplate    bool   `json:"IsTemplate"`
	ResourceTag   string `json:"ResourceTag,omitempty"`
	ResourceType  string `json:"ResourceType,omitempty"`
	ResourceValue string `json:"ResourceValue,omitempty"`
	ResourceTime  string `json:"ResourceTime,omitempty"`
	CreatedAt     string `json:"CreatedAt"`
	UpdatedAt     string `json:"UpdatedAt"`
}

func taskToEntity(t domain.Task) taskEntity {
	ent := taskEntity{
		Entity:        aztables.Entity{PartitionKey: t.UserID, RowKey: t.ID},
		Title:         t.Title,
		Description:   t.Description,
		ColumnID:      t.ColumnID,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		Color:         t.Color,
		AssignedTo:    t.AssignedTo,
		IsTemplate:    t.IsTemplate,
		ResourceTag:   t.ResourceTag,
		ResourceType:  string(t.ResourceType),
		ResourceValue: t.ResourceValue,
		ResourceTime:  t.ResourceTime,
		CreatedAt:     t.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:     t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if t.DueDate != nil {
		ent.DueDate = t.DueDate.String()
	}
	return ent
}

func (e taskEntity) toDomain() (domain.Task, error) {
	t := domain.Task{
		ID:            e.RowKey,
		Title:         e.Title,
		Description:   e.Description,
		ColumnID:      e.ColumnID,
		Status:        domain.TaskStatus(e.Status),
		Priority:      domain.TaskPriority(e.Priority),
		Color:         e.Color,
		AssignedTo:    e.AssignedTo,
		IsTemplate:    e.IsTemplate,
		ResourceTag:   e.ResourceTag,
		ResourceType:  domain.ResourceType(e.ResourceType),
		ResourceValue: e.ResourceValue,
		ResourceTime:  e.ResourceTime,
		UserID:        e.PartitionKey,
	}
	if e.DueDate != "" {
		d, err := domain.ParseDate(e.DueDate)
		if err != nil {
			return domain.Task{}, err
		}
		t.DueDate = d
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, e.CreatedAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, e.UpdatedAt)
	return t, nil
}

type columnEntity struct {
	aztables.Entity
	Title    string `json:"Title"`
	Position int    `json:"Position"`
	Color    string `json:"Color,omitempty"`
}

func columnToEntity(c domain.Column) columnEntity {
	return columnEntity{
		Entity:   aztables.Entity{PartitionKey: c.UserID, RowKey: c.ID},
		Title:    c.Title,
		Position: c.Position,
		Color:    c.Color,
	}
}

func (e columnEntity) toDomain() domain.Column {
	return domain.Column{
		ID:       e.RowKey,
		Title:    e.Title,
		Position: e.Position,
		Color:    e.Color,
		UserID:   e.PartitionKey,
	}
}

type updateEntity struct {
	aztables.Entity
	TaskID    string `json:"TaskID"`
	Content   string `json:"Content"`
	Type      string `json:"Type"`
	CreatedAt string `json:"CreatedAt"`
}

func updateToEntity(u domain.TaskUpdate) updateEntity {
	return updateEntity{
		Entity:    aztables.Entity{PartitionKey: u.UserID, RowKey: u.ID},
		TaskID:    u.TaskID,
		Content:   u.Content,
		Type:      string(u.Type),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (e updateEntity) toDomain() (domain.TaskUpdate, error) {
	u := domain.TaskUpdate{
		ID:      e.RowKey,
		TaskID:  e.TaskID,
		UserID:  e.PartitionKey,
		Content: e.Content,
		Type:    domain.UpdateType(e.Type),
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, e.CreatedAt)
	return u, nil
}

type attachmentEntity struct {
	aztables.Entity
	TaskID    string `json:"TaskID"`
	FileName  string `json:"FileName"`
	FileURL   string `json:"FileURL"`
	FileSize  int64  `json:"FileSize,string"`
	FileType  string `json:"FileType,omitempty"`
	CreatedAt string `json:"CreatedAt"`
}

func attachmentToEntity(a domain.Attachment) attachmentEntity {
	return attachmentEntity{
		Entity:    aztables.Entity{PartitionKey: a.UserID, RowKey: a.ID},
		TaskID:    a.TaskID,
		FileName:  a.FileName,
		FileURL:   a.FileURL,
		FileSize:  a.FileSize,
		FileType:  a.FileType,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (e attachmentEntity) toDomain() domain.Attachment {
	a := domain.Attachment{
		ID:       e.RowKey,
		TaskID:   e.TaskID,
		UserID:   e.PartitionKey,
		FileName: e.FileName,
		FileURL:  e.FileURL,
		FileSize: e.FileSize,
		FileType: e.FileType,
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, e.CreatedAt)
	return a
}

type profileEntity struct {
	aztables.Entity
	Name                string `json:"Name,omitempty"`
	Email               string `json:"Email,omitempty"`
	AvatarURL           string `json:"AvatarURL,omitempty"`
	LastSeenAt          string `json:"LastSeenAt,omitempty"`
	ConfirmBeforeDelete bool   `json:"ConfirmBeforeDelete"`
}

func (e profileEntity) toDomain() domain.Profile {
	p := domain.Profile{
		ID:                  e.RowKey,
		Name:                e.Name,
		Email:               e.Email,
		AvatarURL:           e.AvatarURL,
		ConfirmBeforeDelete: e.ConfirmBeforeDelete,
	}
	p.LastSeenAt, _ = time.Parse(time.RFC3339Nano, e.LastSeenAt)
	return p
}
