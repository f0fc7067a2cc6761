package archive

import (
	"sort"
	"strings"

	"formbase-api/internal/database"
	"formbase-api/internal/domain"
	"formbase-api/internal/form"
	"formbase-api/internal/lifecycle"
	"formbase-api/internal/metrics"
	"formbase-api/internal/rowquery"
	"formbase-api/internal/util"

	"gorm.io/gorm"
)

type ArchiveService struct {
	DB *gorm.DB
}

var _ ArchiveServiceAPI = (*ArchiveService)(nil)

func searchName(q *gorm.DB, table, search string) *gorm.DB {
	if strings.TrimSpace(search) == "" {
		return q
	}
	return q.Where("LOWER("+table+".name) LIKE ?"+util.LikeEscape, util.ContainsPattern(search))
}

// ----- listings -----

func (s *ArchiveService) deletedDatabases(tx *gorm.DB, ownerID, search string) *gorm.DB {
	q := lifecycle.DeletedFor(ownerID).Apply(tx.Model(&database.Database{}), "databases")
	return searchName(q, "databases", search)
}

func (s *ArchiveService) ListDeletedDatabases(ownerID string, q ListQuery) ([]database.Database, int64, error) {
	var total int64
	if err := s.deletedDatabases(s.DB, ownerID, q.Search).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dbs := []database.Database{}
	err := s.deletedDatabases(s.DB, ownerID, q.Search).
		Order("databases.deleted_at DESC").
		Limit(q.Page.Limit).
		Offset(q.Page.Offset()).
		Find(&dbs).Error
	return dbs, total, err
}

func (s *ArchiveService) deletedForms(tx *gorm.DB, ownerID, search string) *gorm.DB {
	q := lifecycle.DeletedFor(ownerID).Apply(tx.Model(&form.Form{}), "forms")
	return searchName(q, "forms", search)
}

func (s *ArchiveService) ListDeletedForms(ownerID string, q ListQuery) ([]form.Form, int64, error) {
	var total int64
	if err := s.deletedForms(s.DB, ownerID, q.Search).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	forms := []form.Form{}
	err := s.deletedForms(s.DB, ownerID, q.Search).
		Order("forms.deleted_at DESC").
		Limit(q.Page.Limit).
		Offset(q.Page.Offset()).
		Find(&forms).Error
	return forms, total, err
}

// archivedRows resolves archived rows that live in active databases of
// ownerID, optionally narrowed to one database, then applies the column
// filters and the free-text search to their payloads. Newest deletions first.
func (s *ArchiveService) archivedRows(tx *gorm.DB, ownerID, databaseID, search string, filters []rowquery.Clause) ([]ArchivedRow, error) {
	q := tx.Table("database_rows").
		Select("database_rows.id, database_rows.database_id, databases.name AS database_name, " +
			"database_rows.data, database_rows.created_at, database_rows.updated_at, database_rows.deleted_at").
		Joins("JOIN databases ON databases.id = database_rows.database_id").
		Where("database_rows.deleted_at IS NOT NULL").
		Where("databases.user_id = ? AND databases.deleted_at IS NULL", ownerID)
	if databaseID != "" {
		q = q.Where("database_rows.database_id = ?", databaseID)
	}

	var rows []ArchivedRow
	if err := q.Order("database_rows.deleted_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	pred := rowquery.And(rowquery.Compile(filters), rowquery.Search(search))
	out := make([]ArchivedRow, 0, len(rows))
	for _, r := range rows {
		if pred.Matches(r.payload()) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListArchivedRows pages through archived rows. With a database id the
// database must be active and owned, and its columns come back with the rows.
func (s *ArchiveService) ListArchivedRows(ownerID string, q RowQuery) (*RowListing, error) {
	listing := &RowListing{Columns: []database.DatabaseColumn{}, Rows: []ArchivedRow{}}

	if q.DatabaseID != "" {
		dbs := &database.DatabaseService{DB: s.DB}
		_, cols, err := dbs.GetDatabase(ownerID, q.DatabaseID)
		if err != nil {
			return nil, err
		}
		listing.Columns = cols
	}

	rows, err := s.archivedRows(s.DB, ownerID, q.DatabaseID, q.Search, q.Filters)
	if err != nil {
		return nil, err
	}

	listing.Total = int64(len(rows))
	start, end := q.Page.Window(len(rows))
	listing.Rows = rows[start:end]
	return listing, nil
}

// DatabasesWithArchivedRows lists active databases of ownerID that hold at
// least one archived row, by name.
func (s *ArchiveService) DatabasesWithArchivedRows(ownerID string, q ListQuery) ([]DatabaseRowCount, int64, error) {
	query := s.DB.Table("databases").
		Select("databases.id, databases.name, COUNT(database_rows.id) AS deleted_rows_count").
		Joins("JOIN database_rows ON database_rows.database_id = databases.id AND database_rows.deleted_at IS NOT NULL").
		Where("databases.user_id = ? AND databases.deleted_at IS NULL", ownerID)
	query = searchName(query, "databases", q.Search)

	var all []DatabaseRowCount
	if err := query.Group("databases.id, databases.name").
		Order("databases.name ASC").
		Scan(&all).Error; err != nil {
		return nil, 0, err
	}

	total := int64(len(all))
	start, end := q.Page.Window(len(all))
	return append([]DatabaseRowCount{}, all[start:end]...), total, nil
}

// ----- bulk operator -----

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func bulkAction(action lifecycle.Action) error {
	if action != lifecycle.Restore && action != lifecycle.Purge {
		return domain.Invalid("unsupported bulk action: " + string(action))
	}
	return nil
}

// nameConflicts returns, sorted, the names that would collide if every record
// in names became active: names already held by an active record of the owner
// and names that appear more than once in the batch itself.
func nameConflicts(tx *gorm.DB, model interface{}, table, ownerID string, names []string) ([]string, error) {
	counts := make(map[string]int, len(names))
	for _, n := range names {
		counts[n]++
	}
	distinct := make([]string, 0, len(counts))
	for n := range counts {
		distinct = append(distinct, n)
	}
	if len(distinct) == 0 {
		return nil, nil
	}

	var active []string
	if err := lifecycle.ActiveFor(ownerID).Apply(tx.Model(model), table).
		Where(table+".name IN ?", distinct).
		Pluck(table+".name", &active).Error; err != nil {
		return nil, err
	}

	conflict := map[string]struct{}{}
	for _, n := range active {
		conflict[n] = struct{}{}
	}
	for n, c := range counts {
		if c > 1 {
			conflict[n] = struct{}{}
		}
	}

	out := make([]string, 0, len(conflict))
	for n := range conflict {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (s *ArchiveService) resolveDatabases(tx *gorm.DB, ownerID string, req BulkRequest, action lifecycle.Action) ([]database.Database, error) {
	var dbs []database.Database
	if req.SelectedAll {
		err := s.deletedDatabases(tx, ownerID, req.Search).Find(&dbs).Error
		return dbs, err
	}

	ids := uniqueIDs(req.IDs)
	if err := lifecycle.DeletedFor(ownerID).Apply(tx.Model(&database.Database{}), "databases").
		Where("databases.id IN ?", ids).
		Find(&dbs).Error; err != nil {
		return nil, err
	}
	if len(dbs) != len(ids) {
		return nil, lifecycle.MissingFromSet(lifecycle.KindDatabase, action, len(ids), len(dbs))
	}
	return dbs, nil
}

// BulkDatabases restores or purges a set of archived databases in one
// transaction. Either every database in the set is applied or none is.
func (s *ArchiveService) BulkDatabases(ownerID string, req BulkRequest, action lifecycle.Action) (res BulkResult, err error) {
	defer func() { metrics.ObserveTransition("database", "bulk_"+string(action), err, int(res.Count)) }()

	if err := bulkAction(action); err != nil {
		return res, err
	}
	if err := req.Validate(); err != nil {
		return res, domain.Invalid(err.Error())
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		dbs, err := s.resolveDatabases(tx, ownerID, req, action)
		if err != nil || len(dbs) == 0 {
			return err
		}

		ids := make([]string, len(dbs))
		names := make([]string, len(dbs))
		for i, d := range dbs {
			ids[i], names[i] = d.ID, d.Name
		}

		if action == lifecycle.Purge {
			if err := database.PurgeDatabases(tx, ids); err != nil {
				return err
			}
			res = BulkResult{Count: int64(len(ids)), IDs: ids}
			return nil
		}

		conflicting, err := nameConflicts(tx, &database.Database{}, "databases", ownerID, names)
		if err != nil {
			return err
		}
		if err := lifecycle.CanRestoreSet(lifecycle.KindDatabase, conflicting); err != nil {
			return err
		}

		upd := tx.Unscoped().Model(&database.Database{}).Where("id IN ?", ids).Update("deleted_at", nil)
		if upd.Error != nil {
			return upd.Error
		}
		res = BulkResult{Count: upd.RowsAffected, IDs: ids}
		return nil
	})
	if err != nil {
		return BulkResult{}, err
	}
	return res, nil
}

func (s *ArchiveService) resolveRows(tx *gorm.DB, ownerID string, req BulkRequest, action lifecycle.Action) ([]string, error) {
	if req.SelectedAll {
		rows, err := s.archivedRows(tx, ownerID, req.DatabaseID, req.Search, nil)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		return ids, nil
	}

	ids := uniqueIDs(req.IDs)
	var found []string
	if err := tx.Table("database_rows").
		Joins("JOIN databases ON databases.id = database_rows.database_id").
		Where("database_rows.id IN ?", ids).
		Where("database_rows.deleted_at IS NOT NULL").
		Where("databases.user_id = ? AND databases.deleted_at IS NULL", ownerID).
		Pluck("database_rows.id", &found).Error; err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, lifecycle.MissingFromSet(lifecycle.KindRow, action, len(ids), len(found))
	}
	return found, nil
}

// BulkRows restores or purges archived rows of active databases in one transaction.
func (s *ArchiveService) BulkRows(ownerID string, req BulkRequest, action lifecycle.Action) (res BulkResult, err error) {
	defer func() { metrics.ObserveTransition("row", "bulk_"+string(action), err, int(res.Count)) }()

	if err := bulkAction(action); err != nil {
		return res, err
	}
	if err := req.Validate(); err != nil {
		return res, domain.Invalid(err.Error())
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		ids, err := s.resolveRows(tx, ownerID, req, action)
		if err != nil || len(ids) == 0 {
			return err
		}

		var r *gorm.DB
		if action == lifecycle.Purge {
			r = tx.Unscoped().Where("id IN ?", ids).Delete(&database.DatabaseRow{})
		} else {
			r = tx.Unscoped().Model(&database.DatabaseRow{}).Where("id IN ?", ids).Update("deleted_at", nil)
		}
		if r.Error != nil {
			return r.Error
		}
		res = BulkResult{Count: r.RowsAffected, IDs: ids}
		return nil
	})
	if err != nil {
		return BulkResult{}, err
	}
	return res, nil
}

func (s *ArchiveService) resolveForms(tx *gorm.DB, ownerID string, req BulkRequest, action lifecycle.Action) ([]form.Form, error) {
	var forms []form.Form
	if req.SelectedAll {
		err := s.deletedForms(tx, ownerID, req.Search).Find(&forms).Error
		return forms, err
	}

	ids := uniqueIDs(req.IDs)
	if err := lifecycle.DeletedFor(ownerID).Apply(tx.Model(&form.Form{}), "forms").
		Where("forms.id IN ?", ids).
		Find(&forms).Error; err != nil {
		return nil, err
	}
	if len(forms) != len(ids) {
		return nil, lifecycle.MissingFromSet(lifecycle.KindForm, action, len(ids), len(forms))
	}
	return forms, nil
}

// BulkForms restores or purges archived forms. Purging removes their submissions.
func (s *ArchiveService) BulkForms(ownerID string, req BulkRequest, action lifecycle.Action) (res BulkResult, err error) {
	defer func() { metrics.ObserveTransition("form", "bulk_"+string(action), err, int(res.Count)) }()

	if err := bulkAction(action); err != nil {
		return res, err
	}
	if err := req.Validate(); err != nil {
		return res, domain.Invalid(err.Error())
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		forms, err := s.resolveForms(tx, ownerID, req, action)
		if err != nil || len(forms) == 0 {
			return err
		}

		ids := make([]string, len(forms))
		names := make([]string, len(forms))
		for i, f := range forms {
			ids[i], names[i] = f.ID, f.Name
		}

		if action == lifecycle.Purge {
			if err := form.PurgeForms(tx, ids); err != nil {
				return err
			}
			res = BulkResult{Count: int64(len(ids)), IDs: ids}
			return nil
		}

		conflicting, err := nameConflicts(tx, &form.Form{}, "forms", ownerID, names)
		if err != nil {
			return err
		}
		if err := lifecycle.CanRestoreSet(lifecycle.KindForm, conflicting); err != nil {
			return err
		}

		upd := tx.Unscoped().Model(&form.Form{}).Where("id IN ?", ids).Update("deleted_at", nil)
		if upd.Error != nil {
			return upd.Error
		}
		res = BulkResult{Count: upd.RowsAffected, IDs: ids}
		return nil
	})
	if err != nil {
		return BulkResult{}, err
	}
	return res, nil
}
