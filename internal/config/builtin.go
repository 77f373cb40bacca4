package config

// BuiltinLayouts returns the built-in layout library.
//
// These are always available without defining them in YAML. A layout of the
// same name in the config file replaces the built-in one.
func BuiltinLayouts() map[string]Layout {
	return map[string]Layout{
		"maximize": {
			Mode:       LayoutModeMaximize,
			TileRegion: TileRegion{Type: RegionFull},
		},
		"tiled": {
			Mode:       LayoutModeVertical,
			TileRegion: TileRegion{Type: RegionFull},
		},
		"columns": {
			Mode:       LayoutModeHorizontal,
			TileRegion: TileRegion{Type: RegionFull},
		},
		"grid": {
			Mode:       LayoutModeAuto,
			TileRegion: TileRegion{Type: RegionFull},
		},
		"master-stack": {
			Mode:               LayoutModeMasterStack,
			TileRegion:         TileRegion{Type: RegionFull},
			MasterWidthPercent: 55,
		},
	}
}
