package reportengine

import "sort"

// Plan is a query template plus the result column list. Pagination is applied later.
type Plan struct {
	Query   Query
	Columns []ResultColumn
	// RowCap is the definition limit, zero when unbounded.
	RowCap int
}

// PlanQuery builds the projection, grouping and ordering for a validated definition.
func PlanQuery(ds *DataSource, def *Definition, mode Mode, preds []Predicate) *Plan {
	p := &Plan{Query: Query{Source: ds, Mode: mode, Predicates: preds}}
	if def.Limit != nil && mode != ModeScalar {
		p.RowCap = *def.Limit
	}

	switch mode {
	case ModePlain:
		planPlain(p, ds, def)
	case ModeScalar:
		p.Query.Projection = aggregateProjection(ds, def.Aggregations)
		p.Columns = aggregateColumns(def.Aggregations)
	case ModeGrouped:
		planGrouped(p, ds, def)
	}
	return p
}

func planPlain(p *Plan, ds *DataSource, def *Definition) {
	visible := make([]Column, 0, len(def.Columns))
	for _, c := range def.Columns {
		if c.Visible {
			visible = append(visible, c)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Order < visible[j].Order })

	seen := make(map[string]bool, len(visible))
	for _, c := range visible {
		if seen[c.Field] {
			continue
		}
		seen[c.Field] = true
		meta, _ := ds.Column(c.Field)
		p.Query.Projection = append(p.Query.Projection, Projection{Name: c.Field, Column: meta.Ref, Type: meta.Type})
		p.Columns = append(p.Columns, ResultColumn{Field: c.Field, Label: labelFor(c, meta)})
	}

	var pk string
	if meta, ok := ds.Column(ds.PrimaryKey); ok {
		pk = meta.Ref
	}
	if ob := def.OrderBy; ob != nil {
		meta, _ := ds.Column(ob.Field)
		desc, _ := parseDirection(ob.Direction)
		p.Query.OrderBy = append(p.Query.OrderBy, Ordering{Column: meta.Ref, Desc: desc})
		if meta.Ref == pk {
			pk = ""
		}
	}
	if pk != "" {
		p.Query.OrderBy = append(p.Query.OrderBy, Ordering{Column: pk})
	}
}

func planGrouped(p *Plan, ds *DataSource, def *Definition) {
	labels := make(map[string]string, len(def.Columns))
	for _, c := range def.Columns {
		if c.Label != "" {
			labels[c.Field] = c.Label
		}
	}

	for _, g := range def.GroupBy {
		meta, _ := ds.Column(g)
		p.Query.GroupBy = append(p.Query.GroupBy, meta.Ref)
		p.Query.Projection = append(p.Query.Projection, Projection{Name: g, Column: meta.Ref, Type: meta.Type})
		label := labels[g]
		if label == "" {
			label = meta.Label
		}
		p.Columns = append(p.Columns, ResultColumn{Field: g, Label: label})
	}
	p.Query.Projection = append(p.Query.Projection, aggregateProjection(ds, def.Aggregations)...)
	p.Columns = append(p.Columns, aggregateColumns(def.Aggregations)...)

	ordered := make(map[string]bool, len(def.GroupBy))
	if ob := def.OrderBy; ob != nil {
		desc, _ := parseDirection(ob.Direction)
		if hasAlias(def.Aggregations, ob.Field) {
			p.Query.OrderBy = append(p.Query.OrderBy, Ordering{Column: ob.Field, Output: true, Desc: desc})
		} else {
			meta, _ := ds.Column(ob.Field)
			p.Query.OrderBy = append(p.Query.OrderBy, Ordering{Column: meta.Ref, Desc: desc})
			ordered[meta.Ref] = true
		}
	}
	for _, ref := range p.Query.GroupBy {
		if !ordered[ref] {
			ordered[ref] = true
			p.Query.OrderBy = append(p.Query.OrderBy, Ordering{Column: ref})
		}
	}
}

func aggregateProjection(ds *DataSource, aggs []Aggregation) []Projection {
	out := make([]Projection, 0, len(aggs))
	for _, a := range aggs {
		meta, _ := ds.Column(a.Field)
		t := TypeNumber
		if a.Type == AggMin || a.Type == AggMax {
			t = meta.Type
		}
		out = append(out, Projection{Name: a.OutputName(), Column: meta.Ref, Type: t, Agg: a.Type})
	}
	return out
}

func aggregateColumns(aggs []Aggregation) []ResultColumn {
	out := make([]ResultColumn, 0, len(aggs))
	for _, a := range aggs {
		name := a.OutputName()
		out = append(out, ResultColumn{Field: name, Label: name})
	}
	return out
}

func labelFor(c Column, meta ColumnMeta) string {
	if c.Label != "" {
		return c.Label
	}
	return meta.Label
}
