package orchestrator

import (
	"context"

	"github.com/crmarques/ddiconf/filter"
)

// ListOptions narrows a list beyond the natural-key parameters.
type ListOptions struct {
	// Fields projects each result onto the named attributes.
	Fields []string
	// Filters are field==value terms added to the key filter.
	Filters map[string]string
	// TagFilters are tag==value terms sent as the tag filter.
	TagFilters map[string]string
}

func (o ListOptions) query(base filter.Expression) filter.Query {
	return filter.Query{
		Fields:    filter.FieldSet(o.Fields),
		Filter:    base.And(filter.FromMap(stringValues(o.Filters)).Terms()...),
		TagFilter: filter.FromMap(stringValues(o.TagFilters)),
	}
}

func stringValues(values map[string]string) map[string]any {
	converted := make(map[string]any, len(values))
	for key, value := range values {
		converted[key] = value
	}
	return converted
}

func (r *reconciliation) list(ctx context.Context, options ListOptions) (Result, error) {
	if err := r.prepare(ctx, keysForList); err != nil {
		return Result{}, err
	}

	query := options.query(r.lookupExpression(false))
	r.logger.Info("listing resources", "collection", r.desc.Collection, "query", query.String())
	results, err := r.resolver.Find(ctx, r.desc.Collection, query)
	if err != nil {
		return Result{}, err
	}

	items := make([]any, 0, len(results))
	for _, object := range results {
		items = append(items, object)
	}
	return Applied(false, ActionListed, items), nil
}
