// Package entitydiscover creates provisional entities from extraction
// output and runs the forward-only promotion state machine (C7).
package entitydiscover

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/entity"
)

// typeMap maps raw LLM-produced type strings (lowercased) to a recognized
// entity.Type. Anything absent from this table falls back to COMPANY.
var typeMap = map[string]entity.Type{
	"company":        entity.TypeCOMPANY,
	"facility":       entity.TypeFACILITY,
	"product":        entity.TypePRODUCT,
	"component":      entity.TypeCOMPONENT,
	"material":       entity.TypeMATERIAL,
	"process_tech":   entity.TypePROCESS_TECH,
	"buyer_class":    entity.TypeBUYER_CLASS,
	"geo":            entity.TypeGEO,
	"location":       entity.TypeGEO,
	"policy_program": entity.TypePOLICY_PROGRAM,
	"index":          entity.TypeINDEX,
	"agency":         entity.TypePOLICY_PROGRAM,
	"regulator":      entity.TypePOLICY_PROGRAM,
	"org":            entity.TypeCOMPANY,
	"person":         entity.TypeCOMPANY,
	"entity":         entity.TypeCOMPANY,
	"industry":       entity.TypeBUYER_CLASS,
	"generic":        entity.TypeBUYER_CLASS,
	"unknown":        entity.TypeCOMPANY,
	"utility":        entity.TypeCOMPANY,
}

// NormalizeType maps a raw extracted type string to a recognized
// entity.Type, defaulting to COMPANY for anything unrecognized.
func NormalizeType(raw string) entity.Type {
	if mapped, ok := typeMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return mapped
	}
	return entity.TypeCOMPANY
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

const slugMaxLen = 50

// Slugify lowercases, replaces runs of non-alphanumeric characters with a
// single underscore, trims leading/trailing underscores, and caps the
// result at slugMaxLen characters so generated entity IDs stay bounded.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugInvalid.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > slugMaxLen {
		s = s[:slugMaxLen]
	}
	return s
}

// Input carries the parameters of a single discover_entity call.
type Input struct {
	Name       string
	Type       string
	ItemID     string
	LayerHint  string
	RoleHint   string
	IDOverride string
}

// DiscoverEntity idempotently creates or bumps an entity: if IDOverride is
// supplied or the canonical E:<type>:<slug> ID already exists, its
// mention_count is bumped and its ID returned. Otherwise, if any entity's
// canonical_name matches case-insensitively, that entity is bumped
// instead. Only when neither matches is a new DISCOVERED entity inserted.
func DiscoverEntity(ctx context.Context, client *ent.Client, in Input) (string, error) {
	normalizedType := NormalizeType(in.Type)
	slug := Slugify(in.Name)

	candidateID := in.IDOverride
	if candidateID == "" {
		candidateID = fmt.Sprintf("E:%s:%s", strings.ToLower(strings.TrimSpace(in.Type)), slug)
	}

	existing, err := client.Entity.Get(ctx, candidateID)
	if err == nil {
		return bump(ctx, client, existing.ID)
	}
	if !ent.IsNotFound(err) {
		return "", fmt.Errorf("looking up entity %s: %w", candidateID, err)
	}

	byName, err := client.Entity.Query().
		Where(entity.CanonicalNameEqualFold(in.Name)).
		First(ctx)
	if err == nil {
		return bump(ctx, client, byName.ID)
	}
	if !ent.IsNotFound(err) {
		return "", fmt.Errorf("looking up entity by name %s: %w", in.Name, err)
	}

	create := client.Entity.Create().
		SetID(candidateID).
		SetCanonicalName(in.Name).
		SetType(normalizedType).
		SetAliases(map[string][]string{"en": {in.Name}}).
		SetStatus(entity.StatusDISCOVERED).
		SetMentionCount(1).
		SetDiscoveredFromItem(in.ItemID)
	if in.RoleHint != "" {
		create = create.SetRoles([]string{in.RoleHint})
	}
	if in.LayerHint != "" {
		create = create.SetLayers([]string{in.LayerHint})
	}

	created, err := create.Save(ctx)
	if err != nil {
		return "", fmt.Errorf("creating entity %s: %w", candidateID, err)
	}
	return created.ID, nil
}

func bump(ctx context.Context, client *ent.Client, id string) (string, error) {
	if err := client.Entity.UpdateOneID(id).AddMentionCount(1).Exec(ctx); err != nil {
		return "", fmt.Errorf("bumping mention_count for %s: %w", id, err)
	}
	return id, nil
}
