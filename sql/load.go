package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"slices"

	"github.com/lib/pq"
)

//go:embed init.sql
var initSQL string

//go:embed documents.sql
var documentsSQL string

// DocumentsFunctions are the functions documents.sql has to create.
var DocumentsFunctions = []string{
	"set_documents_updated_at",
	"init_documents",
	"insert_document",
	"select_document",
	"select_recent_documents",
	"select_documents_by_similarity",
	"update_document_embedding",
	"update_document_labels",
	"delete_document",
}

type script struct {
	name      string
	body      string
	functions []string
}

var documentsScript = script{
	name:      "documents",
	body:      documentsSQL,
	functions: DocumentsFunctions,
}

// Init creates the pgvector extension.
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing init SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadDocumentsSql loads the document functions.
// Without force nothing is executed if all of them already exist.
func LoadDocumentsSql(db *sql.DB, force bool) error {
	return load(db, documentsScript, force)
}

func load(db *sql.DB, s script, force bool) error {
	if !force {
		missing, err := missingFunctions(db, s.functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", s.name, err)
		}
		if len(missing) == 0 {
			return nil
		}
	}

	_, err := db.Exec(s.body)
	if err != nil {
		return fmt.Errorf("error executing %s SQL: %w", s.name, err)
	}

	missing, err := missingFunctions(db, s.functions)
	if err != nil {
		return fmt.Errorf("error checking %s functions: %w", s.name, err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s SQL did not create functions %v", s.name, missing)
	}

	log.Printf("SQL %s functions loaded successfully", s.name)
	return nil
}

// missingFunctions returns the names without a matching pg_proc entry, in input order.
func missingFunctions(db *sql.DB, names []string) ([]string, error) {
	rows, err := db.Query(
		`SELECT DISTINCT proname::TEXT FROM pg_proc WHERE proname::TEXT = ANY($1::TEXT[]);`,
		pq.Array(names),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		found = append(found, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range names {
		if !slices.Contains(found, name) {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
