package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ihale.org/internal/ids"
	"ihale.org/internal/ticket"
)

// TicketStore is the Postgres ticket.Service.
type TicketStore struct {
	db *sql.DB
}

var _ ticket.Service = (*TicketStore)(nil)

const ticketColumns = `id, user_id, price, status, expiry_date, message, created_at`

func scanTicket(row interface{ Scan(...any) error }) (ticket.Ticket, error) {
	var t ticket.Ticket
	err := row.Scan(&t.ID, &t.UserID, &t.Price, &t.Status, &t.ExpiryDate, &t.Message, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ticket.Ticket{}, ticket.ErrTicketNotFound
	}
	if err != nil {
		return ticket.Ticket{}, err
	}
	return t, nil
}

func (s *TicketStore) Purchase(ctx context.Context, userID string) (ticket.Ticket, error) {
	now := time.Now().UTC()
	t := ticket.Ticket{
		ID:         ids.New(),
		UserID:     userID,
		Price:      ticket.DefaultPrice,
		Status:     ticket.StatusActive,
		ExpiryDate: now.Add(ticket.Validity),
		Message:    ticket.DefaultMessage,
		CreatedAt:  now,
	}
	_, err := s.db.ExecContext(ctx, `
		insert into tickets(id, user_id, price, status, expiry_date, message, created_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, t.ID, t.UserID, t.Price, t.Status, t.ExpiryDate, t.Message, t.CreatedAt)
	if err != nil {
		return ticket.Ticket{}, err
	}
	return t, nil
}

func (s *TicketStore) ListMine(ctx context.Context, userID string) ([]ticket.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+ticketColumns+` from tickets
		where user_id=$1
		order by created_at desc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *TicketStore) Refund(ctx context.Context, ticketID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		delete from tickets where id=$1 and user_id=$2 and status=$3
	`, ticketID, userID, ticket.StatusActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ticket.ErrTicketNotFound
	}
	return nil
}

func (s *TicketStore) Use(ctx context.Context, userID, vehicleID string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var ticketID string
	err = tx.QueryRowContext(ctx, `
		select id from tickets
		where user_id=$1 and status=$2
		order by id asc
		limit 1
		for update
	`, userID, ticket.StatusActive).Scan(&ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ticket.ErrNoActiveTicket
	}
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `delete from tickets where id=$1`, ticketID); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `
		delete from tickets where user_id=$1 and status=$2
	`, userID, ticket.StatusUsed); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return ticketID, nil
}

func (s *TicketStore) Cleanup(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		delete from tickets where user_id=$1 and status=$2
	`, userID, ticket.StatusUsed)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *TicketStore) CountAll(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `select count(*) from tickets`).Scan(&n)
	return n, err
}

func (s *TicketStore) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		select count(*) from tickets where user_id=$1 and status=$2
	`, userID, ticket.StatusActive).Scan(&n)
	return n, err
}

func (s *TicketStore) RevenueTotal(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `select coalesce(sum(price),0) from tickets`).Scan(&total)
	return total, err
}

func (s *TicketStore) MonthlyReport(ctx context.Context) ([]ticket.MonthBucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		select to_char(date_trunc('month', created_at), 'YYYY-MM') as month,
			sum(price), count(*)
		from tickets
		group by 1
		order by 1
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ticket.MonthBucket
	for rows.Next() {
		var b ticket.MonthBucket
		if err := rows.Scan(&b.Month, &b.Total, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *TicketStore) ListAll(ctx context.Context) ([]ticket.View, error) {
	rows, err := s.db.QueryContext(ctx, `
		select t.id, t.user_id, t.price, t.status, t.expiry_date, t.message, t.created_at,
			coalesce(u.name,''), coalesce(u.email,'')
		from tickets t
		left join users u on u.id = t.user_id
		order by t.created_at desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ticket.View
	for rows.Next() {
		var v ticket.View
		if err := rows.Scan(&v.ID, &v.UserID, &v.Price, &v.Status, &v.ExpiryDate,
			&v.Message, &v.CreatedAt, &v.UserName, &v.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
