package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"hardshop/internal/domain"

	"github.com/google/uuid"
)

// querier is the subset of *sql.DB / *sql.Tx used by detail storage.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// detailTable knows how to persist and load one category's subtype rows.
// Product storage is table-per-type: the base products row and the subtype
// row share the same id, one subtype table per category.
type detailTable struct {
	insert func(ctx context.Context, q querier, id uuid.UUID, d domain.Details) error
	load   func(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]domain.Details, error)
}

// detailTables dispatches category to subtype storage. Construction and
// hydration go through this lookup table; there is no open-ended subtyping.
var detailTables = map[domain.Category]detailTable{
	domain.CategoryCpu: {
		insert: func(ctx context.Context, q querier, id uuid.UUID, d domain.Details) error {
			c := d.(*domain.CpuDetails)
			_, err := q.ExecContext(ctx,
				`INSERT INTO cpus (id, cores, socket, series, integrated_graphics) VALUES ($1, $2, $3, $4, $5)`,
				id, c.Cores, c.Socket, c.Series, c.IntegratedGraphics,
			)
			return err
		},
		load: func(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]domain.Details, error) {
			return loadDetailRows(ctx, q,
				`SELECT id, cores, socket, series, integrated_graphics FROM cpus WHERE id IN (%s)`,
				ids,
				func(rows *sql.Rows) (uuid.UUID, domain.Details, error) {
					var id uuid.UUID
					d := &domain.CpuDetails{}
					err := rows.Scan(&id, &d.Cores, &d.Socket, &d.Series, &d.IntegratedGraphics)
					return id, d, err
				})
		},
	},
	domain.CategoryCase: {
		insert: func(ctx context.Context, q querier, id uuid.UUID, d domain.Details) error {
			c := d.(*domain.CaseDetails)
			_, err := q.ExecContext(ctx,
				`INSERT INTO cases (id, color, form_factor, power_supply, side_panel) VALUES ($1, $2, $3, $4, $5)`,
				id, c.Color, c.FormFactor, c.PowerSupply, c.SidePanel,
			)
			return err
		},
		load: func(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]domain.Details, error) {
			return loadDetailRows(ctx, q,
				`SELECT id, color, form_factor, power_supply, side_panel FROM cases WHERE id IN (%s)`,
				ids,
				func(rows *sql.Rows) (uuid.UUID, domain.Details, error) {
					var id uuid.UUID
					d := &domain.CaseDetails{}
					err := rows.Scan(&id, &d.Color, &d.FormFactor, &d.PowerSupply, &d.SidePanel)
					return id, d, err
				})
		},
	},
	domain.CategoryCpuCooler: {
		insert: func(ctx context.Context, q querier, id uuid.UUID, d domain.Details) error {
			c := d.(*domain.CpuCoolerDetails)
			_, err := q.ExecContext(ctx,
				`INSERT INTO cpu_coolers (id, fan_rpm, noise_level, water_cooled, socket) VALUES ($1, $2, $3, $4, $5)`,
				id, c.FanRPM, c.NoiseLevel, c.WaterCooled, c.Socket,
			)
			return err
		},
		load: func(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]domain.Details, error) {
			return loadDetailRows(ctx, q,
				`SELECT id, fan_rpm, noise_level, water_cooled, socket FROM cpu_coolers WHERE id IN (%s)`,
				ids,
				func(rows *sql.Rows) (uuid.UUID, domain.Details, error) {
					var id uuid.UUID
					d := &domain.CpuCoolerDetails{}
					err := rows.Scan(&id, &d.FanRPM, &d.NoiseLevel, &d.WaterCooled, &d.Socket)
					return id, d, err
				})
		},
	},
	domain.CategoryMemory: {
		insert: func(ctx context.Context, q querier, id uuid.UUID, d domain.Details) error {
			c := d.(*domain.MemoryDetails)
			_, err := q.ExecContext(ctx,
				`INSERT INTO memories (id, capacity, speed, modules, kind, ecc) VALUES ($1, $2, $3, $4, $5, $6)`,
				id, c.Capacity, c.Speed, c.Modules, c.Kind, c.ECC,
			)
			return err
		},
		load: func(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]domain.Details, error) {
			return loadDetailRows(ctx, q,
				`SELECT id, capacity, speed, modules, kind, ecc FROM memories WHERE id IN (%s)`,
				ids,
				func(rows *sql.Rows) (uuid.UUID, domain.Details, error) {
					var id uuid.UUID
					d := &domain.MemoryDetails{}
					err := rows.Scan(&id, &d.Capacity, &d.Speed, &d.Modules, &d.Kind, &d.ECC)
					return id, d, err
				})
		},
	},
	domain.CategoryMotherboard: {
		insert: func(ctx context.Context, q querier, id uuid.UUID, d domain.Details) error {
			c := d.(*domain.MotherboardDetails)
			_, err := q.ExecContext(ctx,
				`INSERT INTO motherboards (id, socket, form_factor, chipset, memory_slots, wifi_included) VALUES ($1, $2, $3, $4, $5, $6)`,
				id, c.Socket, c.FormFactor, c.Chipset, c.MemorySlots, c.WifiIncluded,
			)
			return err
		},
		load: func(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]domain.Details, error) {
			return loadDetailRows(ctx, q,
				`SELECT id, socket, form_factor, chipset, memory_slots, wifi_included FROM motherboards WHERE id IN (%s)`,
				ids,
				func(rows *sql.Rows) (uuid.UUID, domain.Details, error) {
					var id uuid.UUID
					d := &domain.MotherboardDetails{}
					err := rows.Scan(&id, &d.Socket, &d.FormFactor, &d.Chipset, &d.MemorySlots, &d.WifiIncluded)
					return id, d, err
				})
		},
	},
	domain.CategoryStorage: {
		insert: func(ctx context.Context, q querier, id uuid.UUID, d domain.Details) error {
			c := d.(*domain.StorageDetails)
			_, err := q.ExecContext(ctx,
				`INSERT INTO storages (id, capacity, kind, interface, cache, nvme) VALUES ($1, $2, $3, $4, $5, $6)`,
				id, c.Capacity, c.Kind, c.Interface, c.Cache, c.NVMe,
			)
			return err
		},
		load: func(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]domain.Details, error) {
			return loadDetailRows(ctx, q,
				`SELECT id, capacity, kind, interface, cache, nvme FROM storages WHERE id IN (%s)`,
				ids,
				func(rows *sql.Rows) (uuid.UUID, domain.Details, error) {
					var id uuid.UUID
					d := &domain.StorageDetails{}
					err := rows.Scan(&id, &d.Capacity, &d.Kind, &d.Interface, &d.Cache, &d.NVMe)
					return id, d, err
				})
		},
	},
	domain.CategoryVideoCard: {
		insert: func(ctx context.Context, q querier, id uuid.UUID, d domain.Details) error {
			c := d.(*domain.VideoCardDetails)
			_, err := q.ExecContext(ctx,
				`INSERT INTO video_cards (id, chipset, memory, core_clock, length) VALUES ($1, $2, $3, $4, $5)`,
				id, c.Chipset, c.Memory, c.CoreClock, c.Length,
			)
			return err
		},
		load: func(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]domain.Details, error) {
			return loadDetailRows(ctx, q,
				`SELECT id, chipset, memory, core_clock, length FROM video_cards WHERE id IN (%s)`,
				ids,
				func(rows *sql.Rows) (uuid.UUID, domain.Details, error) {
					var id uuid.UUID
					d := &domain.VideoCardDetails{}
					err := rows.Scan(&id, &d.Chipset, &d.Memory, &d.CoreClock, &d.Length)
					return id, d, err
				})
		},
	},
	domain.CategoryPowerSupply: {
		insert: func(ctx context.Context, q querier, id uuid.UUID, d domain.Details) error {
			c := d.(*domain.PowerSupplyDetails)
			_, err := q.ExecContext(ctx,
				`INSERT INTO power_supplies (id, wattage, efficiency, modular, form_factor) VALUES ($1, $2, $3, $4, $5)`,
				id, c.Wattage, c.Efficiency, c.Modular, c.FormFactor,
			)
			return err
		},
		load: func(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]domain.Details, error) {
			return loadDetailRows(ctx, q,
				`SELECT id, wattage, efficiency, modular, form_factor FROM power_supplies WHERE id IN (%s)`,
				ids,
				func(rows *sql.Rows) (uuid.UUID, domain.Details, error) {
					var id uuid.UUID
					d := &domain.PowerSupplyDetails{}
					err := rows.Scan(&id, &d.Wattage, &d.Efficiency, &d.Modular, &d.FormFactor)
					return id, d, err
				})
		},
	},
}

// loadDetailRows runs a subtype query with an id IN-list and collects the
// scanned detail variants keyed by product id.
func loadDetailRows(
	ctx context.Context,
	q querier,
	queryTemplate string,
	ids []uuid.UUID,
	scan func(rows *sql.Rows) (uuid.UUID, domain.Details, error),
) (map[uuid.UUID]domain.Details, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]domain.Details{}, nil
	}

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf(queryTemplate, placeholders(len(ids)))

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load product details: %w", err)
	}
	defer rows.Close()

	details := make(map[uuid.UUID]domain.Details, len(ids))
	for rows.Next() {
		id, d, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product details: %w", err)
		}
		details[id] = d
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product details: %w", err)
	}

	return details, nil
}

// placeholders builds "$1, $2, ..., $n" for IN-list queries.
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

// hydrateDetails populates the Details variant of every product in place,
// grouping the lookups by category so each subtype table is queried once.
func hydrateDetails(ctx context.Context, q querier, products []*domain.Product) error {
	byCategory := make(map[domain.Category][]uuid.UUID)
	for _, p := range products {
		byCategory[p.Category] = append(byCategory[p.Category], p.ID)
	}

	loaded := make(map[uuid.UUID]domain.Details)
	for category, ids := range byCategory {
		table, ok := detailTables[category]
		if !ok {
			return fmt.Errorf("no detail table for category %s", category)
		}
		details, err := table.load(ctx, q, ids)
		if err != nil {
			return err
		}
		for id, d := range details {
			loaded[id] = d
		}
	}

	for _, p := range products {
		p.Details = loaded[p.ID]
	}

	return nil
}
