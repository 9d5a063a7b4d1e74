// Package returner persists job returns, job loads and bus events, and
// answers the master's job queries.
package returner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/minionops/minionbase/internal/filestore"
	"github.com/minionops/minionbase/internal/model"
	"github.com/minionops/minionbase/internal/pkg/payload"
	"github.com/minionops/minionbase/internal/repo"
)

type Service struct {
	returns *repo.ReturnRepo
	events  *repo.EventRepo
	archive filestore.Store
}

func NewService(returns *repo.ReturnRepo, events *repo.EventRepo, archive filestore.Store) *Service {
	return &Service{returns: returns, events: events, archive: archive}
}

type ReturnInput struct {
	JID      string
	MinionID string
	Fun      string
	Success  bool
	Return   interface{}
	FullRet  interface{}
}

type EventInput struct {
	Tag      string
	Data     interface{}
	MasterID string
}

type JobSummary struct {
	JID       string      `json:"jid"`
	Load      interface{} `json:"load"`
	AlterTime int64       `json:"alter_time"`
}

func (s *Service) SaveReturn(ctx context.Context, in ReturnInput) error {
	ret, err := payload.Dumps(in.Return)
	if err != nil {
		return err
	}
	fullRet, err := payload.Dumps(in.FullRet)
	if err != nil {
		return err
	}
	return s.returns.InsertReturn(ctx, &model.JobReturn{
		JID:      in.JID,
		MinionID: in.MinionID,
		Fun:      in.Fun,
		Success:  in.Success,
		Ret:      ret,
		FullRet:  fullRet,
	})
}

func (s *Service) SaveEvents(ctx context.Context, events []EventInput) error {
	rows := make([]*model.Event, 0, len(events))
	for _, ev := range events {
		data, err := payload.Dumps(ev.Data)
		if err != nil {
			return err
		}
		rows = append(rows, &model.Event{Tag: ev.Tag, Data: data, MasterID: ev.MasterID})
	}
	return s.events.Insert(ctx, rows)
}

func (s *Service) SaveLoad(ctx context.Context, jid string, load interface{}) error {
	data, err := payload.Dumps(load)
	if err != nil {
		return err
	}
	return s.returns.SaveLoad(ctx, jid, data)
}

func (s *Service) GetLoad(ctx context.Context, jid string) (interface{}, error) {
	data, err := s.returns.GetLoad(ctx, jid)
	if err != nil {
		return nil, err
	}
	return payload.Loads(data)
}

// GetJID maps each minion that answered the job to its full return.
func (s *Service) GetJID(ctx context.Context, jid string) (map[string]interface{}, error) {
	rows, err := s.returns.GetByJID(ctx, jid)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(rows))
	for _, row := range rows {
		value, err := payload.Loads(row.FullRet)
		if err != nil {
			return nil, err
		}
		out[row.MinionID] = value
	}
	return out, nil
}

// GetFun maps each minion to the most recent return it produced for the
// given function.
func (s *Service) GetFun(ctx context.Context, fun string) (map[string]interface{}, error) {
	rows, err := s.returns.GetByFun(ctx, fun)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(rows))
	for _, row := range rows {
		value, err := payload.Loads(row.Ret)
		if err != nil {
			return nil, err
		}
		out[row.MinionID] = value
	}
	return out, nil
}

func (s *Service) GetJIDs(ctx context.Context) ([]JobSummary, error) {
	loads, err := s.returns.ListJIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]JobSummary, 0, len(loads))
	for _, load := range loads {
		value, err := payload.Loads(load.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, JobSummary{JID: load.JID, Load: value, AlterTime: load.AlterTime})
	}
	return out, nil
}

func (s *Service) GetMinions(ctx context.Context) ([]string, error) {
	return s.returns.ListMinions(ctx)
}

type EventRecord struct {
	ID        int64       `json:"id"`
	Tag       string      `json:"tag"`
	Data      interface{} `json:"data"`
	MasterID  string      `json:"master_id"`
	AlterTime int64       `json:"alter_time"`
}

// GetEvents lists stored bus events for a tag, newest first.
func (s *Service) GetEvents(ctx context.Context, tag string, limit uint) ([]EventRecord, error) {
	rows, err := s.events.ListByTag(ctx, tag, limit)
	if err != nil {
		return nil, err
	}
	out := make([]EventRecord, 0, len(rows))
	for _, row := range rows {
		value, err := payload.Loads(row.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, EventRecord{
			ID:        row.ID,
			Tag:       row.Tag,
			Data:      value,
			MasterID:  row.MasterID,
			AlterTime: row.AlterTime,
		})
	}
	return out, nil
}

type PruneStats struct {
	Returns int64 `json:"returns"`
	Loads   int64 `json:"loads"`
	Events  int64 `json:"events"`
}

// Prune removes returns and loads older than keep and events older than
// eventKeep. When an archive store is configured the pruned returns are
// exported there first.
func (s *Service) Prune(ctx context.Context, keep, eventKeep time.Duration) (PruneStats, error) {
	var stats PruneStats
	cutoff := time.Now().Add(-keep).Unix()
	if s.archive != nil {
		if err := s.exportReturns(ctx, cutoff); err != nil {
			return stats, fmt.Errorf("archive returns: %w", err)
		}
	}
	deleted, err := s.returns.DeleteReturnsBefore(ctx, cutoff)
	if err != nil {
		return stats, err
	}
	stats.Returns = deleted
	deleted, err = s.returns.DeleteLoadsBefore(ctx, cutoff)
	if err != nil {
		return stats, err
	}
	stats.Loads = deleted
	eventCutoff := time.Now().Add(-eventKeep).Unix()
	deleted, err = s.events.DeleteBefore(ctx, eventCutoff)
	if err != nil {
		return stats, err
	}
	stats.Events = deleted
	return stats, nil
}

type archivedReturn struct {
	JID       string      `json:"jid"`
	MinionID  string      `json:"minion_id"`
	Fun       string      `json:"fun"`
	Success   bool        `json:"success"`
	Return    interface{} `json:"return"`
	AlterTime int64       `json:"alter_time"`
}

func (s *Service) exportReturns(ctx context.Context, cutoff int64) error {
	rows, err := s.returns.SelectReturnsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	records := make([]archivedReturn, 0, len(rows))
	for _, row := range rows {
		value, err := payload.Loads(row.Ret)
		if err != nil {
			// Undecodable payloads still get archived, raw-less.
			logutil.GetLogger(ctx).Warn("archive: undecodable return payload",
				zap.String("jid", row.JID), zap.String("minion_id", row.MinionID), zap.Error(err))
			value = nil
		}
		records = append(records, archivedReturn{
			JID:       row.JID,
			MinionID:  row.MinionID,
			Fun:       row.Fun,
			Success:   row.Success,
			Return:    value,
			AlterTime: row.AlterTime,
		})
	}
	doc, err := json.Marshal(records)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("job_returns-%d.json", time.Now().Unix())
	reader := nopReadSeekCloser{bytes.NewReader(doc)}
	if err := s.archive.Save(ctx, key, reader, int64(len(doc))); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("archived pruned job returns",
		zap.String("key", key), zap.Int("count", len(records)))
	return nil
}

type nopReadSeekCloser struct {
	*bytes.Reader
}

func (nopReadSeekCloser) Close() error { return nil }
