package options

// declareDefaults registers the builtin options and theme entries.
// Glyph options name the separators drawn at cell junctions; the nine
// disp_*top/mid/bot_sep entries cover multi-line cells at the key-column
// boundary, the right edge of the sheet, and ordinary columns.
func declareDefaults(s *Store) {
	// Display behaviour
	s.Declare("default_width", 20, "default column width")
	s.Declare("default_height", 4, "default maximum column height")
	s.Declare("textwrap_cells", true, "wordwrap text for multiline rows")
	s.Declare("scroll_incr", 3, "rows to scroll per mouse wheel event")

	// Replay
	s.Declare("replay_wait", 0.0, "time to wait between replayed commands, in seconds")
	s.Declare("replay_movement", false, "insert movements during replay")

	// Command log
	s.Declare("rowkey_prefix", "キ", "string prefix for rowkey in the cmdlog")
	s.Declare("cmdlog_histfile", "", "file to autorecord each cmdlog action to")

	// Indicators
	s.Declare("disp_more_left", "<", "indicator of more columns to the left")
	s.Declare("disp_more_right", ">", "indicator of more columns to the right")
	s.Declare("disp_truncator", "…", "indicator of truncated text")
	s.Declare("disp_note_none", "⌀", "visible contents of a cell whose value is None")
	s.Declare("disp_replay_play", "▶", "status indicator for active replay")
	s.Declare("disp_replay_pause", "‖", "status indicator for paused replay")

	// Column separators
	s.Declare("disp_column_sep", "╵", "separator between columns")
	s.Declare("disp_keycol_sep", "║", "separator between key columns and rest of columns")

	// Single-column junctions for multi-line rows
	s.Declare("disp_rowtop_sep", "│", "")
	s.Declare("disp_rowmid_sep", "│", "")
	s.Declare("disp_rowbot_sep", "╵", "")
	s.Declare("disp_rowend_sep", "║", "")
	s.Declare("disp_keytop_sep", "║", "")
	s.Declare("disp_keymid_sep", "║", "")
	s.Declare("disp_keybot_sep", "║", "")
	s.Declare("disp_endtop_sep", "║", "")
	s.Declare("disp_endmid_sep", "║", "")
	s.Declare("disp_endbot_sep", "║", "")

	// Colors. Values are style specs: attribute words plus an optional
	// color token ("81 cyan" prefers the 256-color number, falls back to
	// the named color on restricted terminals).
	s.Declare("color_default", "normal", "the default color")
	s.Declare("color_default_hdr", "bold", "color of the column headers")
	s.Declare("color_bottom_hdr", "underline", "color of the bottom header row")
	s.Declare("color_current_row", "reverse", "color of the cursor row")
	s.Declare("color_current_col", "bold", "color of the cursor column")
	s.Declare("color_current_hdr", "bold reverse", "color of the header for the cursor column")
	s.Declare("color_column_sep", "246 blue", "color of column separators")
	s.Declare("color_key_col", "81 cyan", "color of key columns")
	s.Declare("color_hidden_col", "8", "color of hidden columns on metasheets")
	s.Declare("color_selected_row", "215 yellow", "color of selected rows")
	s.Declare("color_error", "red", "color of error rows")
	s.Declare("color_note_type", "226 yellow", "color of cell notes")
	s.Declare("color_status_replay", "green", "color of replay status indicator")
}
