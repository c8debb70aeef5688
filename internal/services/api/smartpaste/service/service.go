// Package service contains smart paste workflows for the HTTP API
package service

import (
	"context"
	"errors"

	"smartpaste/internal/adapters/navigate"
	"smartpaste/internal/core/catalog"
	"smartpaste/internal/core/classifier"
	"smartpaste/internal/core/pastegate"
	"smartpaste/internal/core/suggest"
	perr "smartpaste/internal/platform/errors"
	"smartpaste/internal/services/api/smartpaste/domain"
)

// Service defines the service contract for smart paste
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	cls *classifier.Classifier
	cat *catalog.Catalog
	hub *Hub
}

// New creates a new smart paste service
func New(cls *classifier.Classifier, cat *catalog.Catalog, hub *Hub) *Svc {
	if cls == nil {
		panic("smartpaste.Service requires a non nil Classifier")
	}
	if hub == nil {
		panic("smartpaste.Service requires a non nil Hub")
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Svc{cls: cls, cat: cat, hub: hub}
}

// Hub exposes the session store
func (s *Svc) Hub() *Hub { return s.hub }

// Classify runs the classifier on one payload
func (s *Svc) Classify(_ context.Context, in domain.ClassifyInput) (domain.ClassifyResp, error) {
	out := domain.ClassifyResp{Result: s.cls.Classify(in.Text)}
	if out.Result != nil {
		out.Tool = s.tool(out.Result.TargetID)
	}
	if in.Explain {
		out.Candidates = s.cls.Candidates(in.Text)
	}
	return out, nil
}

// Rules lists the registry in evaluation order
func (s *Svc) Rules(_ context.Context) (domain.RulesResp, error) {
	reg := s.cls.Registry()
	out := domain.RulesResp{
		Version:   reg.Version,
		Name:      reg.Name,
		Threshold: s.cls.Threshold(),
		Policy:    "first-match",
		Rules:     make([]domain.RuleInfo, 0, reg.Len()),
	}
	for i, r := range reg.Rules() {
		sp := r.Spec()
		out.Rules = append(out.Rules, domain.RuleInfo{
			Order:      i + 1,
			ID:         sp.ID,
			Target:     sp.Target,
			Confidence: sp.Confidence,
			Variants:   sp.Variants,
			Pattern:    sp.Pattern,
			Evidence:   sp.Evidence,
			Reason:     sp.Reason,
		})
	}
	return out, nil
}

// CreateSession starts a client session
func (s *Svc) CreateSession(_ context.Context) (domain.SessionSnapshot, error) {
	e, err := s.hub.create()
	if err != nil {
		return domain.SessionSnapshot{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "could not create session")
	}
	return s.snapshot(e.id, e.eng.Session().Snapshot()), nil
}

// Session returns the current snapshot
func (s *Svc) Session(_ context.Context, id string) (domain.SessionSnapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return s.snapshot(id, e.eng.Session().Snapshot()), nil
}

// Paste feeds one paste event to the session
func (s *Svc) Paste(ctx context.Context, id string, in domain.PasteInput) (domain.PasteResp, error) {
	e, err := s.lookup(id)
	if err != nil {
		return domain.PasteResp{}, err
	}
	out := e.eng.Paste(ctx, pastegate.Event{
		Target:  pastegate.ParseTarget(in.Target.Tag, in.Target.ContentEditable),
		Text:    in.Text,
		Denied:  in.Denied,
		Surface: in.Surface,
	})
	resp := domain.PasteResp{Outcome: out, Session: s.snapshot(id, e.eng.Session().Snapshot())}
	if out.Navigated {
		if d, ok := e.route.Last(); ok {
			resp.Destination = &d
		}
	}
	return resp, nil
}

// Accept accepts the active suggestion and returns its destination
func (s *Svc) Accept(ctx context.Context, id string) (domain.AcceptResp, error) {
	e, err := s.lookup(id)
	if err != nil {
		return domain.AcceptResp{}, err
	}
	res, err := e.eng.Session().Accept(ctx)
	switch {
	case errors.Is(err, suggest.ErrIdle):
		return domain.AcceptResp{}, perr.Conflictf("session %s has no active suggestion", id)
	case errors.Is(err, suggest.ErrClosed):
		return domain.AcceptResp{}, perr.NotFoundf("session %s not found", id)
	case err != nil:
		return domain.AcceptResp{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "navigation failed")
	}
	return domain.AcceptResp{
		Result:      *res,
		Destination: navigate.Resolve(s.cat, res.TargetID),
		Session:     s.snapshot(id, e.eng.Session().Snapshot()),
	}, nil
}

// Dismiss clears the active suggestion
func (s *Svc) Dismiss(_ context.Context, id string) (domain.DismissResp, error) {
	e, err := s.lookup(id)
	if err != nil {
		return domain.DismissResp{}, err
	}
	ok := e.eng.Session().Dismiss()
	return domain.DismissResp{Dismissed: ok, Session: s.snapshot(id, e.eng.Session().Snapshot())}, nil
}

// CloseSession disposes a session
func (s *Svc) CloseSession(_ context.Context, id string) error {
	if !s.hub.remove(id) {
		return perr.NotFoundf("session %s not found", id)
	}
	return nil
}

// Subscribe forwards session transitions to fn
func (s *Svc) Subscribe(_ context.Context, id string, fn func(domain.SessionSnapshot)) (func(), error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.eng.Session().Subscribe(func(sn suggest.Snapshot) {
		fn(s.snapshot(id, sn))
	}), nil
}

func (s *Svc) lookup(id string) (*entry, error) {
	if id == "" {
		return nil, perr.InvalidArgf("session id is required")
	}
	e, ok := s.hub.get(id)
	if !ok {
		return nil, perr.NotFoundf("session %s not found", id)
	}
	return e, nil
}

func (s *Svc) snapshot(id string, sn suggest.Snapshot) domain.SessionSnapshot {
	out := domain.SessionSnapshot{
		SessionID:     id,
		IsActive:      sn.Active,
		CurrentResult: sn.Result,
		ExpiresAt:     sn.ExpiresAt,
		Generation:    sn.Generation,
		Cause:         sn.Cause,
	}
	if sn.Result != nil {
		out.Tool = s.tool(sn.Result.TargetID)
	}
	return out
}

func (s *Svc) tool(id string) *catalog.Tool {
	if t, ok := s.cat.Lookup(id); ok {
		return &t
	}
	return nil
}
