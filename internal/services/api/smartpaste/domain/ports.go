package domain

import "context"

// ServicePort defines the smart paste service contract
type ServicePort interface {
	Classify(ctx context.Context, in ClassifyInput) (ClassifyResp, error)
	Rules(ctx context.Context) (RulesResp, error)

	CreateSession(ctx context.Context) (SessionSnapshot, error)
	Session(ctx context.Context, id string) (SessionSnapshot, error)
	Paste(ctx context.Context, id string, in PasteInput) (PasteResp, error)
	Accept(ctx context.Context, id string) (AcceptResp, error)
	Dismiss(ctx context.Context, id string) (DismissResp, error)
	CloseSession(ctx context.Context, id string) error

	// Subscribe streams snapshots for a session until cancel is called or the session closes
	Subscribe(ctx context.Context, id string, fn func(SessionSnapshot)) (cancel func(), err error)
}
