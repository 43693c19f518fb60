package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/valueobject"
)

const templateColumns = `id, description, format, subject, content, variables, envelope, created_by, created_at`

func envelopeToJSON(env entity.TemplateEnvelope) valueobject.JSONMap {
	out := valueobject.JSONMap{}
	if env.From != "" {
		out["from"] = env.From
	}
	if env.ReplyTo != "" {
		out["reply_to"] = env.ReplyTo
	}
	if env.Subject != "" {
		out["subject"] = env.Subject
	}
	return out
}

func envelopeFromJSON(m valueobject.JSONMap) entity.TemplateEnvelope {
	return entity.TemplateEnvelope{
		From:    m.GetString("from"),
		ReplyTo: m.GetString("reply_to"),
		Subject: m.GetString("subject"),
	}
}

func scanTemplate(row pgx.Row) (*entity.Template, error) {
	var (
		tpl       entity.Template
		format    string
		variables []entity.Variable
		envelope  valueobject.JSONMap
	)

	if err := row.Scan(
		&tpl.ID,
		&tpl.Description,
		&format,
		&tpl.Subject,
		&tpl.Content,
		&variables,
		&envelope,
		&tpl.CreatedBy,
		&tpl.CreatedAt,
	); err != nil {
		return nil, err
	}

	tpl.Format = entity.Format(format).Ensure()
	tpl.Variables = variables
	tpl.Envelope = envelopeFromJSON(envelope)

	return &tpl, nil
}

func (s *DB) GetTemplate(ctx context.Context, id string) (_ *entity.Template, err error) {
	ctx, span := s.startSpan(ctx, "GetTemplate")
	defer func() { s.endSpan(span, err) }()

	tpl, err := scanTemplate(s.conn.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM mailpress_templates WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return tpl, nil
}

func (s *DB) ListTemplates(ctx context.Context) (_ []entity.Template, err error) {
	ctx, span := s.startSpan(ctx, "ListTemplates")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `SELECT `+templateColumns+` FROM mailpress_templates ORDER BY id`)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	items := make([]entity.Template, 0)
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, s.mapError(err)
		}
		items = append(items, *tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return items, nil
}

func (s *DB) CreateTemplate(ctx context.Context, in entity.CreateTemplate) (_ *entity.Template, err error) {
	ctx, span := s.startSpan(ctx, "CreateTemplate")
	defer func() { s.endSpan(span, err) }()

	variables := in.Variables
	if variables == nil {
		variables = []entity.Variable{}
	}

	tpl, err := scanTemplate(s.conn.QueryRow(ctx,
		`INSERT INTO mailpress_templates (id, description, format, subject, content, variables, envelope, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+templateColumns,
		in.ID,
		in.Description,
		in.Format.String(),
		in.Subject,
		in.Content,
		variables,
		envelopeToJSON(in.Envelope),
		in.CreatedBy,
	))
	if err != nil {
		return nil, s.mapError(err)
	}

	return tpl, nil
}
