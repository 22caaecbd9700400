package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ihale.org/internal/auction"
	"ihale.org/internal/ids"
)

// AuctionStore is the Postgres auction.Service. Bid placement and settlement
// run inside row-locked transactions so the ledger append and the listing
// update commit as one unit.
type AuctionStore struct {
	db    *sql.DB
	users *UserStore
}

var _ auction.Service = (*AuctionStore)(nil)

const vehicleColumns = `id, brand, model, year, mileage, fuel_type, transmission,
	starting_price, current_bid, coalesce(current_bidder,''), end_date, status,
	winner_user_id, winner_bid_amount, winner_win_date, image, created_at, updated_at`

func scanVehicle(row interface{ Scan(...any) error }) (auction.Vehicle, error) {
	var (
		v         auction.Vehicle
		winnerID  sql.NullString
		winnerBid sql.NullFloat64
		winDate   sql.NullTime
	)
	err := row.Scan(&v.ID, &v.Brand, &v.Model, &v.Year, &v.Mileage, &v.FuelType,
		&v.Transmission, &v.StartingPrice, &v.CurrentBid, &v.CurrentBidder,
		&v.EndDate, &v.Status, &winnerID, &winnerBid, &winDate, &v.Image,
		&v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auction.Vehicle{}, auction.ErrVehicleNotFound
	}
	if err != nil {
		return auction.Vehicle{}, err
	}
	if winnerID.Valid {
		v.Winner = &auction.Winner{
			UserID:    winnerID.String,
			BidAmount: winnerBid.Float64,
			WinDate:   winDate.Time,
		}
	}
	return v, nil
}

func (s *AuctionStore) listWhere(ctx context.Context, clause string, args ...any) ([]auction.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx, `select `+vehicleColumns+` from vehicles `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []auction.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *AuctionStore) ListActive(ctx context.Context) ([]auction.Vehicle, error) {
	return s.listWhere(ctx, `where status=$1 order by end_date asc`, auction.StatusActive)
}

func (s *AuctionStore) ListAll(ctx context.Context) ([]auction.Vehicle, error) {
	return s.listWhere(ctx, `order by id`)
}

func (s *AuctionStore) Get(ctx context.Context, id string) (auction.Vehicle, error) {
	return scanVehicle(s.db.QueryRowContext(ctx, `select `+vehicleColumns+` from vehicles where id=$1`, id))
}

func (s *AuctionStore) Create(ctx context.Context, v auction.Vehicle) (auction.Vehicle, error) {
	if err := auction.ValidateNew(&v); err != nil {
		return auction.Vehicle{}, err
	}
	if v.ID == "" {
		v.ID = ids.New()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		insert into vehicles(id, brand, model, year, mileage, fuel_type, transmission,
			starting_price, current_bid, current_bidder, end_date, status, image, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,nullif($10,''),$11,$12,$13,$14,$15)
	`, v.ID, v.Brand, v.Model, v.Year, v.Mileage, v.FuelType, v.Transmission,
		v.StartingPrice, v.CurrentBid, v.CurrentBidder, v.EndDate, v.Status, v.Image,
		v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return auction.Vehicle{}, err
	}
	return v, nil
}

func (s *AuctionStore) Update(ctx context.Context, id string, fields auction.UpdateFields) (auction.Vehicle, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return auction.Vehicle{}, err
	}
	defer func() { _ = tx.Rollback() }()

	v, err := scanVehicle(tx.QueryRowContext(ctx, `select `+vehicleColumns+` from vehicles where id=$1 for update`, id))
	if err != nil {
		return auction.Vehicle{}, err
	}
	fields.Apply(&v, time.Now().UTC())
	if err := saveVehicle(ctx, tx, v); err != nil {
		return auction.Vehicle{}, err
	}
	if err := tx.Commit(); err != nil {
		return auction.Vehicle{}, err
	}
	return v, nil
}

func saveVehicle(ctx context.Context, tx *sql.Tx, v auction.Vehicle) error {
	var winnerID, winnerBid, winDate any
	if v.Winner != nil {
		winnerID, winnerBid, winDate = v.Winner.UserID, v.Winner.BidAmount, v.Winner.WinDate
	}
	_, err := tx.ExecContext(ctx, `
		update vehicles set brand=$2, model=$3, year=$4, mileage=$5, fuel_type=$6,
			transmission=$7, starting_price=$8, current_bid=$9, current_bidder=nullif($10,''),
			end_date=$11, status=$12, winner_user_id=$13, winner_bid_amount=$14,
			winner_win_date=$15, image=$16, updated_at=$17
		where id=$1
	`, v.ID, v.Brand, v.Model, v.Year, v.Mileage, v.FuelType, v.Transmission,
		v.StartingPrice, v.CurrentBid, v.CurrentBidder, v.EndDate, v.Status,
		winnerID, winnerBid, winDate, v.Image, v.UpdatedAt)
	return err
}

func (s *AuctionStore) Delete(ctx context.Context, id string) error {
	// Bids stay behind, orphaned.
	res, err := s.db.ExecContext(ctx, `delete from vehicles where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auction.ErrVehicleNotFound
	}
	return nil
}

func (s *AuctionStore) PlaceBid(ctx context.Context, vehicleID, userID string, amount float64) (auction.Bid, error) {
	if vehicleID == "" || userID == "" || amount <= 0 {
		return auction.Bid{}, auction.ErrInvalidBid
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return auction.Bid{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var dummy int
	err = tx.QueryRowContext(ctx, `select 1 from vehicles where id=$1 for update`, vehicleID).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return auction.Bid{}, auction.ErrVehicleNotFound
	}
	if err != nil {
		return auction.Bid{}, err
	}

	bid := auction.Bid{
		ID:        ids.New(),
		VehicleID: vehicleID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx, `
		insert into bids(id, vehicle_id, user_id, amount, created_at)
		values ($1,$2,$3,$4,$5)
	`, bid.ID, bid.VehicleID, bid.UserID, bid.Amount, bid.CreatedAt); err != nil {
		return auction.Bid{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		update vehicles set current_bid=$2, current_bidder=$3, updated_at=$4 where id=$1
	`, vehicleID, amount, userID, bid.CreatedAt); err != nil {
		return auction.Bid{}, err
	}
	if err := tx.Commit(); err != nil {
		return auction.Bid{}, err
	}
	return bid, nil
}

func (s *AuctionStore) BidsForVehicle(ctx context.Context, vehicleID string) ([]auction.BidView, error) {
	rows, err := s.db.QueryContext(ctx, `
		select b.id, b.vehicle_id, b.user_id, b.amount, b.created_at,
			coalesce(u.name,''), coalesce(u.email,'')
		from bids b
		left join users u on u.id = b.user_id
		where b.vehicle_id=$1
		order by b.amount desc
	`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []auction.BidView
	for rows.Next() {
		var view auction.BidView
		if err := rows.Scan(&view.ID, &view.VehicleID, &view.UserID, &view.Amount,
			&view.CreatedAt, &view.BidderName, &view.BidderEmail); err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, rows.Err()
}

func (s *AuctionStore) Settle(ctx context.Context, vehicleID string) (auction.Settlement, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return auction.Settlement{}, err
	}
	defer func() { _ = tx.Rollback() }()

	v, err := scanVehicle(tx.QueryRowContext(ctx, `select `+vehicleColumns+` from vehicles where id=$1 for update`, vehicleID))
	if err != nil {
		return auction.Settlement{}, err
	}

	now := time.Now().UTC()
	var highest auction.Bid
	err = tx.QueryRowContext(ctx, `
		select id, user_id, amount from bids
		where vehicle_id=$1
		order by amount desc, created_at asc
		limit 1
	`, vehicleID).Scan(&highest.ID, &highest.UserID, &highest.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx, `
			update vehicles set status=$2, updated_at=$3 where id=$1
		`, vehicleID, auction.StatusCancelled, now); err != nil {
			return auction.Settlement{}, err
		}
		if err := tx.Commit(); err != nil {
			return auction.Settlement{}, err
		}
		return auction.Settlement{}, auction.ErrNoBids
	}
	if err != nil {
		return auction.Settlement{}, err
	}

	v.Status = auction.StatusCompleted
	v.Winner = &auction.Winner{UserID: highest.UserID, BidAmount: highest.Amount, WinDate: now}
	v.UpdatedAt = now
	if _, err := tx.ExecContext(ctx, `
		update vehicles set status=$2, winner_user_id=$3, winner_bid_amount=$4,
			winner_win_date=$5, updated_at=$6
		where id=$1
	`, vehicleID, v.Status, highest.UserID, highest.Amount, now, now); err != nil {
		return auction.Settlement{}, err
	}
	if err := tx.Commit(); err != nil {
		return auction.Settlement{}, err
	}

	result := auction.Settlement{Vehicle: v, Amount: highest.Amount}
	if u, err := s.users.Find(ctx, highest.UserID); err == nil {
		result.WinnerName = u.Name
		result.WinnerEmail = u.Email
	}
	return result, nil
}

func (s *AuctionStore) countWhere(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (s *AuctionStore) CountVehicles(ctx context.Context) (int, error) {
	return s.countWhere(ctx, `select count(*) from vehicles`)
}

func (s *AuctionStore) CountByStatus(ctx context.Context, status string) (int, error) {
	return s.countWhere(ctx, `select count(*) from vehicles where status=$1`, status)
}

func (s *AuctionStore) CountBids(ctx context.Context) (int, error) {
	return s.countWhere(ctx, `select count(*) from bids`)
}

func (s *AuctionStore) CountBidsByUser(ctx context.Context, userID string) (int, error) {
	return s.countWhere(ctx, `select count(*) from bids where user_id=$1`, userID)
}

func (s *AuctionStore) CountWonByUser(ctx context.Context, userID string) (int, error) {
	return s.countWhere(ctx, `select count(*) from vehicles where winner_user_id=$1`, userID)
}

func (s *AuctionStore) StatusReport(ctx context.Context) ([]auction.StatusBucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		select status, count(*), coalesce(sum(current_bid),0)
		from vehicles
		group by status
		order by status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []auction.StatusBucket
	for rows.Next() {
		var b auction.StatusBucket
		if err := rows.Scan(&b.Status, &b.Count, &b.TotalValue); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
