package service

import (
	"context"
	"log/slog"

	"github.com/vetdesk/vetdesk/internal/core"
	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
	"github.com/vetdesk/vetdesk/internal/observability/metrics"
	"github.com/vetdesk/vetdesk/internal/observability/statsd"
)

// createRequest is implemented by the model create requests.
type createRequest[P any] interface {
	Validate() error
	Build() P
}

// updateRequest is implemented by the model update requests.
type updateRequest[P any] interface {
	Validate() error
	Apply(P)
}

// denyError converts a negative decision into the matching AppError.
func denyError(d domainauth.Decision) error {
	switch d.Reason {
	case domainauth.DenyUnauthenticated:
		return apperrors.Unauthenticated("authentication required")
	case domainauth.DenyForbiddenTarget:
		return apperrors.ForbiddenTarget("this account cannot be modified")
	default:
		return apperrors.Forbidden("insufficient role for this action")
	}
}

// validationError wraps a model validation failure.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Validation(err.Error())
}

func errRequestRequired() error {
	return apperrors.Validation("request body is required")
}

// guard evaluates the policy for one document kind and records denials.
type guard struct {
	kind    domainauth.ResourceKind
	logger  *slog.Logger
	metrics statsd.Sink
}

func (g guard) check(ctx context.Context, caller *domainauth.Identity, action domainauth.Action, res domainauth.Resource) error {
	res.Kind = g.kind
	d := domainauth.Authorize(caller, action, res)
	if d.Allowed {
		return nil
	}
	subject := ""
	if caller != nil {
		subject = caller.SubjectID
	}
	g.logger.InfoContext(ctx, "authorization denied",
		"kind", g.kind,
		"action", action,
		"reason", d.Reason,
		"subject", subject,
	)
	metrics.EmitDenial(g.metrics, metrics.Denial{
		Kind:   string(g.kind),
		Action: string(action),
		Reason: string(d.Reason),
	})
	return denyError(d)
}

// resources implements policy-checked CRUD for one document kind.
// Records are always loaded before update, delete and single reads so the
// policy sees the real owner; nothing is written when the policy denies.
type resources[T any, P model.DocumentPtr[T]] struct {
	guard
	repo core.DocumentRepository[P]
	// target adds kind-specific resource attributes, e.g. the role of a user record.
	target func(P) domainauth.Resource
}

func newResources[T any, P model.DocumentPtr[T]](
	kind domainauth.ResourceKind,
	repo core.DocumentRepository[P],
	logger *slog.Logger,
	sink statsd.Sink,
) resources[T, P] {
	if logger == nil {
		logger = slog.Default()
	}
	return resources[T, P]{
		guard: guard{
			kind:    kind,
			logger:  logger.With("component", "service", "kind", kind),
			metrics: sink,
		},
		repo:  repo,
	}
}

func (r resources[T, P]) resourceOf(doc P) domainauth.Resource {
	if r.target != nil {
		return r.target(doc)
	}
	return domainauth.Resource{OwnerID: doc.OwnerKey()}
}

// load fetches id and authorizes action against it. A missing record is only
// reported as not found to callers who could act on some record of this kind.
func (r resources[T, P]) load(
	ctx context.Context,
	caller *domainauth.Identity,
	action domainauth.Action,
	id string,
) (P, error) {
	doc, err := r.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			if denied := r.check(ctx, caller, action, domainauth.Resource{}); denied != nil {
				return nil, denied
			}
		}
		return nil, err
	}
	if err := r.check(ctx, caller, action, r.resourceOf(doc)); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r resources[T, P]) get(ctx context.Context, caller *domainauth.Identity, id string) (P, error) {
	return r.load(ctx, caller, domainauth.ActionRead, id)
}

func (r resources[T, P]) list(ctx context.Context, caller *domainauth.Identity, opts model.ListOptions) ([]P, error) {
	if err := r.check(ctx, caller, domainauth.ActionRead, domainauth.Resource{}); err != nil {
		return nil, err
	}
	return r.repo.List(ctx, opts.Normalize())
}

func (r resources[T, P]) listByOwner(
	ctx context.Context,
	caller *domainauth.Identity,
	ownerID string,
	opts model.ListOptions,
) ([]P, error) {
	if err := r.check(ctx, caller, domainauth.ActionRead, domainauth.Resource{OwnerID: ownerID}); err != nil {
		return nil, err
	}
	return r.repo.ListByOwner(ctx, ownerID, opts.Normalize())
}

// create authorizes, validates and stores a new record. prepare may run
// cross-record checks on the built document before it is stored.
func (r resources[T, P]) create(
	ctx context.Context,
	caller *domainauth.Identity,
	ownerID string,
	req createRequest[P],
	prepare func(context.Context, P) error,
) (P, error) {
	if err := r.check(ctx, caller, domainauth.ActionCreate, domainauth.Resource{OwnerID: ownerID}); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	doc := req.Build()
	if prepare != nil {
		if err := prepare(ctx, doc); err != nil {
			return nil, err
		}
	}
	return r.repo.Create(ctx, doc)
}

func (r resources[T, P]) update(
	ctx context.Context,
	caller *domainauth.Identity,
	id string,
	req updateRequest[P],
	prepare func(context.Context, P) error,
) (P, error) {
	doc, err := r.load(ctx, caller, domainauth.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	req.Apply(doc)
	if prepare != nil {
		if err := prepare(ctx, doc); err != nil {
			return nil, err
		}
	}
	return r.repo.Update(ctx, doc)
}

func (r resources[T, P]) delete(ctx context.Context, caller *domainauth.Identity, id string) (P, error) {
	doc, err := r.load(ctx, caller, domainauth.ActionDelete, id)
	if err != nil {
		return nil, err
	}
	deleted, err := r.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, r.repoNotFound()
	}
	return doc, nil
}

func (r resources[T, P]) repoNotFound() error {
	return apperrors.NotFoundf("%s record not found", r.kind)
}
