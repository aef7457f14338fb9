package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
)

const reservationColumns = `id, start_date, end_date, full_name, address, mobile_number, number_of_guests, guest_names,
	payment_method, status, payment_status, notes, created_at, updated_at`

type reservationRow struct {
	ID             string         `db:"id"`
	StartDate      calendar.Date  `db:"start_date"`
	EndDate        calendar.Date  `db:"end_date"`
	FullName       string         `db:"full_name"`
	Address        string         `db:"address"`
	MobileNumber   string         `db:"mobile_number"`
	NumberOfGuests int            `db:"number_of_guests"`
	GuestNames     pq.StringArray `db:"guest_names"`
	PaymentMethod  string         `db:"payment_method"`
	Status         string         `db:"status"`
	PaymentStatus  string         `db:"payment_status"`
	Notes          string         `db:"notes"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (row *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID:        row.ID,
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
		Guest: reservation.Guest{
			FullName:       row.FullName,
			Address:        row.Address,
			MobileNumber:   row.MobileNumber,
			NumberOfGuests: row.NumberOfGuests,
			GuestNames:     []string(row.GuestNames),
		},
		PaymentMethod: reservation.PaymentMethod(row.PaymentMethod),
		Status:        reservation.Status(row.Status),
		PaymentStatus: reservation.PaymentStatus(row.PaymentStatus),
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// ReservationRepository は予約リポジトリのPostgreSQL実装
type ReservationRepository struct{ db *sqlx.DB }

// NewReservationRepository はReservationRepositoryを作成する
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create は新しい予約を作成する
func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	query := `
		INSERT INTO reservations (start_date, end_date, full_name, address, mobile_number, number_of_guests, guest_names,
			payment_method, status, payment_status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	guestNames := res.Guest.GuestNames
	if guestNames == nil {
		guestNames = []string{}
	}
	err := pick(r.db, tx).QueryRowxContext(ctx, query,
		res.StartDate, res.EndDate, res.Guest.FullName, res.Guest.Address, res.Guest.MobileNumber,
		res.Guest.NumberOfGuests, pq.Array(guestNames), string(res.PaymentMethod), string(res.Status),
		string(res.PaymentStatus), res.Notes, res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		return mapWriteError("予約作成に失敗", err)
	}
	return nil
}

// GetByID はIDから予約を取得する（トランザクション内では行ロックを取る）
func (r *ReservationRepository) GetByID(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if tx != nil {
		query += ` FOR UPDATE`
	}
	var row reservationRow
	if err := pick(r.db, tx).GetContext(ctx, &row, query, id); err != nil {
		// UUID として不正なIDは存在しないIDとして扱う
		if errors.Is(err, sql.ErrNoRows) || hasCode(err, codeInvalidTextRepresentation) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, transaction.Wrap("予約取得に失敗", err)
	}
	return row.toEntity(), nil
}

// List は全予約を作成日時の新しい順に取得する
func (r *ReservationRepository) List(ctx context.Context) ([]*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC, id`
	var rows []reservationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, transaction.Wrap("予約一覧取得に失敗", err)
	}
	return toEntities(rows), nil
}

// FindOverlapping は区間 [start, end] と両端を含めて重なる予約を取得する
func (r *ReservationRepository) FindOverlapping(ctx context.Context, tx transaction.Tx, rg calendar.Range, statuses ...reservation.Status) ([]*reservation.Reservation, error) {
	if len(statuses) == 0 || rg.IsEmpty() {
		return nil, nil
	}
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE start_date <= $2 AND end_date >= $1 AND status = ANY($3)
		ORDER BY start_date`
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	var rows []reservationRow
	if err := pick(r.db, tx).SelectContext(ctx, &rows, query, rg.Start, rg.End, pq.Array(names)); err != nil {
		return nil, transaction.Wrap("重複予約の検索に失敗", err)
	}
	return toEntities(rows), nil
}

// Update はステータス・支払いステータス・メモを更新する
func (r *ReservationRepository) Update(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	query := `UPDATE reservations SET status = $1, payment_status = $2, notes = $3, updated_at = $4 WHERE id = $5`
	result, err := pick(r.db, tx).ExecContext(ctx, query,
		string(res.Status), string(res.PaymentStatus), res.Notes, res.UpdatedAt, res.ID)
	if err != nil {
		return mapWriteError("予約更新に失敗", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return transaction.Wrap("更新結果の確認に失敗", err)
	}
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// Delete は予約を物理削除する
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		if hasCode(err, codeInvalidTextRepresentation) {
			return reservation.ErrReservationNotFound
		}
		return transaction.Wrap("予約削除に失敗", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return transaction.Wrap("削除結果の確認に失敗", err)
	}
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// CountByStatus はステータスごとの件数を返す
func (r *ReservationRepository) CountByStatus(ctx context.Context) (map[reservation.Status]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM reservations GROUP BY status`); err != nil {
		return nil, transaction.Wrap("ステータス別件数の取得に失敗", err)
	}
	counts := make(map[reservation.Status]int, len(rows))
	for _, row := range rows {
		counts[reservation.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func toEntities(rows []reservationRow) []*reservation.Reservation {
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

// mapWriteError は制約違反をドメインエラーに変換する
func mapWriteError(op string, err error) error {
	switch {
	case hasCode(err, codeExclusionViolation):
		return fmt.Errorf("%s: %w", op, reservation.ErrDatesUnavailable)
	case hasCode(err, codeCheckViolation):
		return fmt.Errorf("%s: %w", op, reservation.ErrInvalidDateRange)
	default:
		return transaction.Wrap(op, err)
	}
}

var _ reservation.Repository = (*ReservationRepository)(nil)
