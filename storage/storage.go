package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/google/uuid"

	"github.com/agiliza2b-source/tasks2/domain"
)

// Tables backing the board. Each row is keyed PartitionKey = owner id,
// RowKey = entity id, so every read and write is scoped to one owner.
type Config struct {
	TasksTable       string
	ColumnsTable     string
	UpdatesTable     string
	AttachmentsTable string
	ProfilesTable    string
	SystemLogQueue   string
	AttachmentsCont  string
}

// Storage provides access to the hosted table store, the system log
// queue and the attachment blob container.
type Storage struct {
	tasks       *aztables.Client
	columns     *aztables.Client
	updates     *aztables.Client
	attachments *aztables.Client
	profiles    *aztables.Client
	syslog      *azqueue.QueueClient
	blobs       *azblob.Client
	container   string

	now func() time.Time
}

// New creates a Storage from the given connection string.
func New(connStr string, cfg Config) (*Storage, error) {
	tablesClientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &tablesClientOptions)
	if err != nil {
		return nil, err
	}

	queue, err := azqueue.NewQueueClientFromConnectionString(connStr, cfg.SystemLogQueue, nil)
	if err != nil {
		return nil, err
	}

	blobs, err := azblob.NewClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, err
	}

	return &Storage{
		tasks:       svc.NewClient(cfg.TasksTable),
		columns:     svc.NewClient(cfg.ColumnsTable),
		updates:     svc.NewClient(cfg.UpdatesTable),
		attachments: svc.NewClient(cfg.AttachmentsTable),
		profiles:    svc.NewClient(cfg.ProfilesTable),
		syslog:      queue,
		blobs:       blobs,
		container:   cfg.AttachmentsCont,
		now:         time.Now,
	}, nil
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}

func ownerFilter(userID string) string {
	return "PartitionKey eq '" + userID + "'"
}

// ListColumns returns the owner's columns ordered by position.
func (s *Storage) ListColumns(ctx context.Context, userID string) ([]domain.Column, error) {
	filter := ownerFilter(userID)
	pager := s.columns.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	cols := []domain.Column{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent columnEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			cols = append(cols, ent.toDomain())
		}
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })
	return cols, nil
}

// ListTasks returns the owner's tasks, templates included, newest first.
func (s *Storage) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	filter := ownerFilter(userID)
	pager := s.tasks.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []domain.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent taskEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			t, err := ent.toDomain()
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

// InsertTask persists a new task, assigning its id and timestamps.
func (s *Storage) InsertTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = s.now().UTC()
	t.UpdatedAt = t.CreatedAt
	payload, err := json.Marshal(taskToEntity(t))
	if err != nil {
		return domain.Task{}, err
	}
	if _, err := s.tasks.AddEntity(ctx, payload, nil); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// UpdateTask replaces the stored row with the given task's fields.
func (s *Storage) UpdateTask(ctx context.Context, t domain.Task) error {
	t.UpdatedAt = s.now().UTC()
	payload, err := json.Marshal(taskToEntity(t))
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.tasks.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &et,
		UpdateMode: aztables.UpdateModeReplace,
	})
	return err
}

// DeleteTask removes a task row.
func (s *Storage) DeleteTask(ctx context.Context, userID, id string) error {
	_, err := s.tasks.DeleteEntity(ctx, userID, id, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

// InsertColumn persists a new column, assigning its id.
func (s *Storage) InsertColumn(ctx context.Context, c domain.Column) (domain.Column, error) {
	c.ID = uuid.NewString()
	payload, err := json.Marshal(columnToEntity(c))
	if err != nil {
		return domain.Column{}, err
	}
	if _, err := s.columns.AddEntity(ctx, payload, nil); err != nil {
		return domain.Column{}, err
	}
	return c, nil
}

// UpdateColumn replaces the stored row with the given column's fields.
func (s *Storage) UpdateColumn(ctx context.Context, c domain.Column) error {
	payload, err := json.Marshal(columnToEntity(c))
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.columns.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &et,
		UpdateMode: aztables.UpdateModeReplace,
	})
	return err
}

// DeleteColumn removes a column row and cascades to every task
// referencing it, honoring the board's referential contract.
func (s *Storage) DeleteColumn(ctx context.Context, userID, id string) error {
	if _, err := s.columns.DeleteEntity(ctx, userID, id, nil); err != nil && !isNotFound(err) {
		return err
	}

	// Deleting rows while paging the same query can shift pages under
	// the iterator, so the keys are collected up front.
	filter := ownerFilter(userID) + " and ColumnID eq '" + id + "'"
	pager := s.tasks.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	var keys []entityKey
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return err
		}
		page, err := entityKeysFromRows(resp.Entities)
		if err != nil {
			return err
		}
		keys = append(keys, page...)
	}
	for _, k := range keys {
		if _, err := s.tasks.DeleteEntity(ctx, k.PartitionKey, k.RowKey, nil); err != nil && !isNotFound(err) {
			return err
		}
	}
	return nil
}

type entityKey struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

func entityKeysFromRows(rows [][]byte) ([]entityKey, error) {
	keys := make([]entityKey, 0, len(rows))
	for _, raw := range rows {
		var k entityKey
		if err := json.Unmarshal(raw, &k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// UpsertColumns replaces rows wholesale by id, inserting unknown ids.
func (s *Storage) UpsertColumns(ctx context.Context, cols []domain.Column) error {
	for _, c := range cols {
		payload, err := json.Marshal(columnToEntity(c))
		if err != nil {
			return err
		}
		if _, err := s.columns.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{
			UpdateMode: aztables.UpdateModeReplace,
		}); err != nil {
			return err
		}
	}
	return nil
}

// UpsertTasks replaces rows wholesale by id, inserting unknown ids.
func (s *Storage) UpsertTasks(ctx context.Context, tasks []domain.Task) error {
	for _, t := range tasks {
		payload, err := json.Marshal(taskToEntity(t))
		if err != nil {
			return err
		}
		if _, err := s.tasks.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{
			UpdateMode: aztables.UpdateModeReplace,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ListTaskUpdates returns a task's updates, newest first.
func (s *Storage) ListTaskUpdates(ctx context.Context, userID, taskID string) ([]domain.TaskUpdate, error) {
	filter := ownerFilter(userID) + " and TaskID eq '" + taskID + "'"
	pager := s.updates.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	out := []domain.TaskUpdate{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent updateEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			u, err := ent.toDomain()
			if err != nil {
				return nil, err
			}
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// InsertTaskUpdates persists the given updates, assigning identities.
func (s *Storage) InsertTaskUpdates(ctx context.Context, updates []domain.TaskUpdate) error {
	for _, u := range updates {
		u.ID = uuid.NewString()
		u.CreatedAt = s.now().UTC()
		payload, err := json.Marshal(updateToEntity(u))
		if err != nil {
			return err
		}
		if _, err := s.updates.AddEntity(ctx, payload, nil); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTaskUpdate replaces an update's content and type.
func (s *Storage) UpdateTaskUpdate(ctx context.Context, u domain.TaskUpdate) error {
	payload, err := json.Marshal(updateToEntity(u))
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.updates.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &et,
		UpdateMode: aztables.UpdateModeReplace,
	})
	return err
}

// DeleteTaskUpdate removes an update row.
func (s *Storage) DeleteTaskUpdate(ctx context.Context, userID, id string) error {
	_, err := s.updates.DeleteEntity(ctx, userID, id, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

// GetProfile fetches the owner's profile row, or nil when absent.
func (s *Storage) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	resp, err := s.profiles.GetEntity(ctx, userID, userID, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var ent profileEntity
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return nil, err
	}
	p := ent.toDomain()
	return &p, nil
}

// TouchProfile merge-updates the owner's last-seen timestamp. Used by
// the presence heartbeat; callers swallow the error.
func (s *Storage) TouchProfile(ctx context.Context, userID string) error {
	ent := map[string]any{
		"PartitionKey": userID,
		"RowKey":       userID,
		"LastSeenAt":   s.now().UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	_, err = s.profiles.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{
		UpdateMode: aztables.UpdateModeMerge,
	})
	return err
}
