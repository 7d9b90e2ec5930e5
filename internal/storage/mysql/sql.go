package mysql

// Note: `text` and `type` are keywords; keep them quoted everywhere.
const reviewColumns = "id, listing_id, source, channel, `type`, rating, rating_raw, categories, `text`, " +
	"language_code, author_name, submitted_at, approved, pinned, created_at, updated_at"

const getReviewSQL = "SELECT " + reviewColumns + " FROM reviews WHERE id = ?"

const listApprovedSQL = "SELECT " + reviewColumns + `
FROM reviews
WHERE listing_id = ? AND approved = TRUE
ORDER BY pinned DESC, submitted_at DESC, id`

const listingStatsSQL = `
SELECT COUNT(*), AVG(rating), MAX(created_at)
FROM reviews
WHERE listing_id = ?`

// -----------------------------------------------------------------------------
// LISTINGS
// -----------------------------------------------------------------------------

const listingColumns = `id, name, slug, hostaway_map_id, google_place_id, description, location, created_at, updated_at`

const insertListingSQL = `
INSERT INTO listings (` + listingColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const updateListingSQL = `
UPDATE listings
SET name = ?, slug = ?, hostaway_map_id = ?, google_place_id = ?, description = ?, location = ?, updated_at = ?
WHERE id = ?`

const slugTakenSQL = `SELECT EXISTS(SELECT 1 FROM listings WHERE slug = ? AND id <> ?)`

// -----------------------------------------------------------------------------
// PROVIDER CACHE
// -----------------------------------------------------------------------------

const getCacheSQL = `SELECT payload, expires_at FROM provider_cache WHERE cache_key = ?`

const putCacheSQL = `
INSERT INTO provider_cache (cache_key, payload, expires_at)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  payload    = VALUES(payload),
  expires_at = VALUES(expires_at),
  updated_at = CURRENT_TIMESTAMP(3)
`
