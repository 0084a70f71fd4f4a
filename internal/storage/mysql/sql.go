package mysql

// places.external_ref carries a unique index; a concurrent double-create
// for the same reference converges on the first row instead of failing.
// LAST_INSERT_ID(id) makes the existing id visible to the caller.
// Attributes are deliberately NOT refreshed on conflict: a canonical
// place is read-only after insert from this pipeline's perspective.
const insertPlaceSQL = `
INSERT INTO places
  (external_ref, name, address, lat, lon, rating, price_tier, category_tags, photo_refs)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id = LAST_INSERT_ID(id)
`

const selectPlaceCols = `
SELECT id, external_ref, name, address, lat, lon, rating, price_tier, category_tags, photo_refs
FROM places
`

const getPlaceByRefSQL = selectPlaceCols + `WHERE external_ref = ?`

const getPlaceByIDSQL = selectPlaceCols + `WHERE id = ?`

// Case-insensitive substring match; the collation on `name` is
// *_ci so LIKE is already case-insensitive.
const searchPlaceByNameSQL = selectPlaceCols + `
WHERE name LIKE CONCAT('%', ?, '%')
ORDER BY id
LIMIT 1
`

// countries.name and cities(name, country_id) carry unique keys with the
// same converge-on-conflict trick as places.
const insertCountrySQL = `
INSERT INTO countries (name)
VALUES (?)
ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
`

const getCountryByNameSQL = `
SELECT id, name FROM countries WHERE name = ?
`

const insertCitySQL = `
INSERT INTO cities (name, country_id, external_ref)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
`

const getCityByNameSQL = `
SELECT id, name, country_id, external_ref
FROM cities
WHERE name = ? AND country_id = ?
`
