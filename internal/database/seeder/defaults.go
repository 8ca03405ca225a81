package seeder

// Defaults returns the seeders run by `ladderctl seed`. Role levels are
// written by the seed-levels migration.
func Defaults(levels LevelSeeder) []Seeder {
	return []Seeder{
		RolesSeeder{},
		RoleLevelsSeeder{Levels: levels},
	}
}
