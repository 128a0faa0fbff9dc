package file

const (
	nodeColumns = `id, user_id, name, type, is_public, parent_id, local_path, status, created_at, updated_at`

	InsertNode = `
		INSERT INTO files (user_id, name, type, is_public, parent_id, local_path, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + nodeColumns
	SelectNodeByID = `
		SELECT ` + nodeColumns + `
		FROM files
		WHERE id = $1
	`
	SelectOwnedNode = `
		SELECT ` + nodeColumns + `
		FROM files
		WHERE id = $1 AND user_id = $2
	`
	SelectNodesByParent = `
		SELECT ` + nodeColumns + `
		FROM files
		WHERE user_id = $1 AND parent_id = $2
		ORDER BY id
		LIMIT $3 OFFSET $4
	`
	SelectStaleNodes = `
		SELECT ` + nodeColumns + `
		FROM files
		WHERE status = $1 AND type <> 'folder' AND updated_at < $2
		ORDER BY id
		LIMIT $3
	`
	UpdateNodePublic = `
		UPDATE files
		SET is_public = $3,
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + nodeColumns
	UpdateNodeStatus = `
		UPDATE files
		SET status = $2,
		    updated_at = now()
		WHERE id = $1 AND status = ANY($3)
	`
	CountNodes = `SELECT count(*) FROM files`
)
