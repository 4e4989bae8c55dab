package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/socialconnect-core/pkg/analysis"
	"github.com/hazyhaar/socialconnect-core/pkg/catalog"
	"github.com/hazyhaar/socialconnect-core/pkg/kit"
	"github.com/hazyhaar/socialconnect-core/pkg/sector"
	"github.com/hazyhaar/socialconnect-core/pkg/store"
	"github.com/hazyhaar/socialconnect-core/pkg/tagger"
)

// Shared request/response types used by both HTTP and MCP transports.

type classifySectorReq struct {
	ExplicitSector string `json:"explicit_sector"`
	AddressStreet  string `json:"address_street"`
}

type detectReq struct {
	Notes                  string   `json:"notes"`
	ExistingProblematiques []string `json:"existing_problematiques"`
	ExistingActions        []string `json:"existing_actions"`
}

type detectResponse struct {
	Problematiques []tagger.Problematique `json:"problematiques"`
	Actions        []tagger.Action        `json:"actions"`
}

type usersBySectorReq struct {
	Annee int
}

type getUserReq struct {
	ID string
}

type reconcileReq struct {
	UserID         string                `json:"-"`
	Problematiques []store.Problematique `json:"problematiques"`
}

type createProblematiqueReq struct {
	UserID string
	store.Problematique
}

type createActionReq struct {
	UserID string
	store.Action
}

// errBadRequest marks endpoint errors caused by the caller.
var errBadRequest = errors.New("bad request")

// autoDescription labels problematiques inferred on read.
const autoDescription = "Ajouté automatiquement depuis les notes"

// Endpoints backed by the registry and the store.

func classifySectorEndpoint(reg *catalog.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*classifySectorReq)
		return reg.Sectors().Classify(sector.Record{
			ExplicitSector: req.ExplicitSector,
			AddressStreet:  req.AddressStreet,
		}), nil
	}
}

func detectEndpoint(reg *catalog.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*detectReq)
		tg := reg.Tagger()
		return detectResponse{
			Problematiques: tg.DetectProblematiques(req.Notes, req.ExistingProblematiques),
			Actions:        tg.DetectActions(req.Notes, req.ExistingActions),
		}, nil
	}
}

func usersBySectorEndpoint(reg *catalog.Registry, st *store.Store) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*usersBySectorReq)
		if req.Annee < 0 {
			return nil, fmt.Errorf("%w: annee must be positive", errBadRequest)
		}
		recs, err := st.SectorRecords(ctx, store.Filter{ServiceID: kit.GetServiceID(ctx), Annee: req.Annee})
		if err != nil {
			return nil, err
		}
		return sector.CountBySector(reg.Sectors(), recs), nil
	}
}

func analyzeEndpoint(an *analysis.Analyzer) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		opts := *request.(*analysis.Options)
		if opts.ServiceID == "" {
			opts.ServiceID = kit.GetServiceID(ctx)
		}
		return an.Run(ctx, opts)
	}
}

func getUserEndpoint(reg *catalog.Registry, st *store.Store) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*getUserReq)
		u, err := st.GetUser(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if svc := kit.GetServiceID(ctx); svc != "" && u.ServiceID != svc {
			return nil, fmt.Errorf("user %s: %w", req.ID, store.ErrNotFound)
		}
		if len(u.Problematiques) == 0 {
			u.Problematiques = autoProblematiques(reg.Tagger(), u)
		}
		return u, nil
	}
}

// ownedUser checks that id exists and, when the caller names a service,
// belongs to it. Users of other services read as not found.
func ownedUser(ctx context.Context, st *store.Store, id string) error {
	u, err := st.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if svc := kit.GetServiceID(ctx); svc != "" && u.ServiceID != svc {
		return fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func reconcileEndpoint(st *store.Store) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*reconcileReq)
		for _, p := range req.Problematiques {
			if p.Type == "" {
				return nil, fmt.Errorf("%w: problematique type is required", errBadRequest)
			}
		}
		if err := ownedUser(ctx, st, req.UserID); err != nil {
			return nil, err
		}
		return st.ReconcileProblematiques(ctx, req.UserID, req.Problematiques)
	}
}

func createProblematiqueEndpoint(st *store.Store) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*createProblematiqueReq)
		if req.Type == "" {
			return nil, fmt.Errorf("%w: type is required", errBadRequest)
		}
		if err := ownedUser(ctx, st, req.UserID); err != nil {
			return nil, err
		}
		p := req.Problematique
		p.ID = ""
		p.UserID = req.UserID
		p.Auto = false
		if err := st.CreateProblematique(ctx, &p); err != nil {
			return nil, err
		}
		return &p, nil
	}
}

func createActionEndpoint(st *store.Store) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*createActionReq)
		if req.Type == "" {
			return nil, fmt.Errorf("%w: type is required", errBadRequest)
		}
		if err := ownedUser(ctx, st, req.UserID); err != nil {
			return nil, err
		}
		a := req.Action
		a.ID = ""
		a.UserID = req.UserID
		if err := st.CreateAction(ctx, &a); err != nil {
			return nil, err
		}
		return &a, nil
	}
}

// autoProblematiques infers problematiques from the notes of a user that has
// none stored. They are returned flagged auto and never persisted.
func autoProblematiques(tg *tagger.Tagger, u *store.User) []store.Problematique {
	notes := u.NotesGenerales
	if notes == "" {
		notes = u.Remarques
	}
	detected := tg.DetectProblematiques(notes, nil)
	out := make([]store.Problematique, len(detected))
	for i, d := range detected {
		out[i] = store.Problematique{
			ID:              "auto-" + u.ID + "-" + d.Type,
			UserID:          u.ID,
			Type:            d.Type,
			Description:     autoDescription,
			DateSignalement: u.CreatedAt,
			Auto:            true,
		}
	}
	return out
}

func catalogEndpoint(reg *catalog.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return reg.Info(), nil
	}
}
