package editor

// Locators is the single table of external-surface addresses: every URL
// and selector the session touches lives here, so markup drift in the
// target platform means updating one value object, not re-deriving logic.
// The zero value of any field falls back to the default table.
type Locators struct {
	// Login surface.
	LoginURL      string `yaml:"login_url"`
	LoginPathMark string `yaml:"login_path_mark"` // substring identifying the login URL
	LoginID       string `yaml:"login_id"`
	LoginPassword string `yaml:"login_password"`
	LoginSubmit   string `yaml:"login_submit"`

	// Compose surface.
	ComposeURL   string `yaml:"compose_url"`
	ComposeFrame string `yaml:"compose_frame"`
	PopupCancel  string `yaml:"popup_cancel"`
	HelpClose    string `yaml:"help_close"`
	TitleArea    string `yaml:"title_area"`
	TextArea     string `yaml:"text_area"`
	ContentArea  string `yaml:"content_area"`
	ImageButton  string `yaml:"image_button"`
	FileInput    string `yaml:"file_input"`

	// Publish layer.
	PublishButton  string `yaml:"publish_button"`
	ConfirmButton  string `yaml:"confirm_button"`
	CategoryButton string `yaml:"category_button"`
	CategoryLabels string `yaml:"category_labels"`
	ReserveRadio   string `yaml:"reserve_radio"`
	DateInput      string `yaml:"date_input"`
	CalendarDays   string `yaml:"calendar_days"`
	HourSelect     string `yaml:"hour_select"`
	MinuteSelect   string `yaml:"minute_select"`
}

// DefaultLocators returns the table for the currently deployed editor
// markup. Hashed class suffixes are matched by prefix so a rebuild of the
// target frontend does not invalidate the whole table.
func DefaultLocators() Locators {
	return Locators{
		LoginURL:      "https://nid.naver.com/nidlogin.login",
		LoginPathMark: "nidlogin",
		LoginID:       "#id",
		LoginPassword: "#pw",
		LoginSubmit:   `#log\.login`,

		ComposeURL:   "https://blog.naver.com/GoBlogWrite.naver",
		ComposeFrame: "#mainFrame",
		PopupCancel:  ".se-popup-button-cancel",
		HelpClose:    ".se-help-panel-close-button",
		TitleArea:    ".se-section-documentTitle .se-text-paragraph",
		TextArea:     ".se-section-text .se-text-paragraph",
		ContentArea:  ".se-component-content",
		ImageButton:  `button[data-name="image"]`,
		FileInput:    `input[type="file"]`,

		PublishButton:  `[class*="publish_btn__"]`,
		ConfirmButton:  `button[class*="confirm_btn__"]`,
		CategoryButton: `[class*="selectbox_button__"]`,
		CategoryLabels: `[class*="option_list_layer__"] label[class*="radio_label__"]`,
		ReserveRadio:   `input#radio_time2[value="pre"]`,
		DateInput:      `input[class*="input_date__"]`,
		CalendarDays:   ".react-datepicker__day:not(.react-datepicker__day--outside-month)",
		HourSelect:     `select[class*="hour_option__"]`,
		MinuteSelect:   `select[class*="minute_option__"]`,
	}
}

// merged returns l with every zero field taken from the defaults.
func (l Locators) merged() Locators {
	d := DefaultLocators()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&l.LoginURL, d.LoginURL)
	fill(&l.LoginPathMark, d.LoginPathMark)
	fill(&l.LoginID, d.LoginID)
	fill(&l.LoginPassword, d.LoginPassword)
	fill(&l.LoginSubmit, d.LoginSubmit)
	fill(&l.ComposeURL, d.ComposeURL)
	fill(&l.ComposeFrame, d.ComposeFrame)
	fill(&l.PopupCancel, d.PopupCancel)
	fill(&l.HelpClose, d.HelpClose)
	fill(&l.TitleArea, d.TitleArea)
	fill(&l.TextArea, d.TextArea)
	fill(&l.ContentArea, d.ContentArea)
	fill(&l.ImageButton, d.ImageButton)
	fill(&l.FileInput, d.FileInput)
	fill(&l.PublishButton, d.PublishButton)
	fill(&l.ConfirmButton, d.ConfirmButton)
	fill(&l.CategoryButton, d.CategoryButton)
	fill(&l.CategoryLabels, d.CategoryLabels)
	fill(&l.ReserveRadio, d.ReserveRadio)
	fill(&l.DateInput, d.DateInput)
	fill(&l.CalendarDays, d.CalendarDays)
	fill(&l.HourSelect, d.HourSelect)
	fill(&l.MinuteSelect, d.MinuteSelect)
	return l
}
