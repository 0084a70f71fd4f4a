package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"wayfarer/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- places ----

func (r *Repo) CreatePlace(ctx context.Context, p domain.CanonicalPlace) (int64, error) {
	tags, _ := json.Marshal(p.CategoryTags)
	photos, _ := json.Marshal(p.PhotoRefs)
	res, err := r.db.ExecContext(ctx, insertPlaceSQL,
		p.ExternalRef,
		p.Name,
		valStr(p.Address),
		valF64(p.Lat),
		valF64(p.Lon),
		valF64(p.Rating),
		valInt(p.PriceTier),
		string(tags),
		string(photos),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) PlaceByRef(ctx context.Context, ref string) (domain.CanonicalPlace, error) {
	return r.scanPlace(r.db.QueryRowContext(ctx, getPlaceByRefSQL, ref))
}

func (r *Repo) PlaceByID(ctx context.Context, id int64) (domain.CanonicalPlace, error) {
	return r.scanPlace(r.db.QueryRowContext(ctx, getPlaceByIDSQL, id))
}

func (r *Repo) PlaceByNameLike(ctx context.Context, name string) (domain.CanonicalPlace, error) {
	return r.scanPlace(r.db.QueryRowContext(ctx, searchPlaceByNameSQL, name))
}

func (r *Repo) scanPlace(row *sql.Row) (domain.CanonicalPlace, error) {
	var p domain.CanonicalPlace
	var address sql.NullString
	var lat, lon, rating sql.NullFloat64
	var priceTier sql.NullInt64
	var tagsJSON, photosJSON []byte

	if err := row.Scan(
		&p.ID,
		&p.ExternalRef,
		&p.Name,
		&address,
		&lat, &lon,
		&rating,
		&priceTier,
		&tagsJSON, &photosJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CanonicalPlace{}, domain.ErrNotFound
		}
		return domain.CanonicalPlace{}, err
	}

	if address.Valid {
		a := address.String
		p.Address = &a
	}
	if lat.Valid {
		f := lat.Float64
		p.Lat = &f
	}
	if lon.Valid {
		f := lon.Float64
		p.Lon = &f
	}
	if rating.Valid {
		f := rating.Float64
		p.Rating = &f
	}
	if priceTier.Valid {
		t := int(priceTier.Int64)
		p.PriceTier = &t
	}
	_ = json.Unmarshal(tagsJSON, &p.CategoryTags)
	_ = json.Unmarshal(photosJSON, &p.PhotoRefs)
	return p, nil
}

// ---- countries & cities ----

func (r *Repo) CreateCountry(ctx context.Context, c domain.CanonicalCountry) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertCountrySQL, c.Name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) CountryByName(ctx context.Context, name string) (domain.CanonicalCountry, error) {
	var c domain.CanonicalCountry
	err := r.db.QueryRowContext(ctx, getCountryByNameSQL, name).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CanonicalCountry{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CanonicalCountry{}, err
	}
	return c, nil
}

func (r *Repo) CreateCity(ctx context.Context, c domain.CanonicalCity) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertCitySQL, c.Name, c.CountryID, valStr(c.ExternalRef))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) CityByNameAndCountry(ctx context.Context, name string, countryID int64) (domain.CanonicalCity, error) {
	var c domain.CanonicalCity
	var ref sql.NullString
	err := r.db.QueryRowContext(ctx, getCityByNameSQL, name, countryID).Scan(&c.ID, &c.Name, &c.CountryID, &ref)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CanonicalCity{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CanonicalCity{}, err
	}
	if ref.Valid {
		s := ref.String
		c.ExternalRef = &s
	}
	return c, nil
}
