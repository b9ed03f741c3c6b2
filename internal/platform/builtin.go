package platform

import (
	"github.com/goapply/goapply/internal/apply"
	"github.com/goapply/goapply/internal/types"
)

func linkedIn() *Adapter {
	return &Adapter{
		Name:            types.PlatformLinkedIn,
		DisplayName:     "LinkedIn",
		Domain:          "linkedin.com",
		JobsURL:         "https://www.linkedin.com/jobs/",
		JobsURLContains: "linkedin.com/jobs",
		SearchURL:       "https://www.linkedin.com/jobs/search/?keywords={keywords}&location={location}",
		Search: SearchSelectors{
			Box:      []string{`[id^="jobs-search-box-keyword-id"]`, `input.jobs-search-box__text-input`},
			Keyword:  []string{`[id^="jobs-search-box-keyword-id"]`, `input[aria-label="Search by title, skill, or company"]`},
			Location: []string{`[id^="jobs-search-box-location-id"]`, `input[aria-label="City, state, or zip code"]`},
			Submit:   []string{`button.jobs-search-box__submit-button`},
			Results:  []string{`.jobs-search-results-list`, `.scaffold-layout__list`, `.jobs-search__results-list`},
		},
		Filters: FilterSelectors{
			EasyApply:         []string{`button[aria-label="Easy Apply filter."]`},
			DatePostedControl: []string{`#searchFilter_timePostedRange`},
			DatePostedOption:  `#timePostedRange-%s`,
			WorkplaceControl:  []string{`#searchFilter_workplaceType`},
			WorkplaceOption:   `#workplaceType-%s`,
			ShowResults:       []string{`button[aria-label="Apply current filter to show results"]`},
			ShowResultsText:   []string{"show results"},
		},
		Tokens: FilterTokens{
			DatePosted: map[types.DatePosted]string{
				types.DatePosted24h:   "r86400",
				types.DatePostedWeek:  "r604800",
				types.DatePostedMonth: "r2592000",
			},
			Workplace: map[types.WorkplaceType]string{
				types.WorkplaceOnsite: "1",
				types.WorkplaceRemote: "2",
				types.WorkplaceHybrid: "3",
			},
		},
		Cards: CardSelectors{
			Card: []string{
				`.job-card-container`,
				`.jobs-search-results__list-item`,
				`li[data-occludable-job-id]`,
				`.scaffold-layout__list-item`,
			},
			KeyAttrs: []string{"data-occludable-job-id", "data-job-id", "id"},
			AppliedMarkers: []string{
				`.jobs-applied-badge`,
				`.artdeco-inline-feedback--success`,
				`.jobs-search-results__list-item--applied`,
				`[data-test-applied-indicator]`,
			},
			AppliedText: []string{"applied"},
			Link: []string{
				`a.job-card-container__link`,
				`a[data-control-id]`,
				`a[href*="/jobs/view/"]`,
				`.job-card-list__title`,
			},
			Title:       []string{`.job-card-list__title`, `.job-card-container__link`, `a[href*="/jobs/view/"]`},
			Company:     []string{`.job-card-container__primary-description`, `.artdeco-entity-lockup__subtitle`},
			Location:    []string{`.job-card-container__metadata-item`, `.artdeco-entity-lockup__caption`},
			ApplyButton: []string{`.jobs-s-apply .jobs-apply-button--top-card button.jobs-apply-button`, `button.jobs-apply-button`},
		},
		Application: apply.Selectors{
			Modal: []string{`.jobs-easy-apply-modal`},
			StepButtons: []string{
				`button[aria-label="Submit application"]`,
				`button[aria-label="Review your application"]`,
				`button[data-easy-apply-next-button]`,
				`button[data-live-test-easy-apply-next-button]`,
				`button[aria-label="Continue to next step"]`,
				`button.artdeco-button--primary[type="button"]`,
				`button.artdeco-button--2.artdeco-button--primary`,
			},
			ActionWords:      apply.DefaultActionWords,
			SubmitWords:      []string{"submit"},
			DismissWords:     []string{"dismiss"},
			ErrorIndicator:   []string{`.artdeco-inline-feedback--error`},
			PostSubmitDialog: []string{`[data-test-modal][role="dialog"][aria-labelledby="post-apply-modal"]`},
			PostSubmitDone:   []string{`.artdeco-modal__actionbar button.artdeco-button--primary`},
			PostSubmitClose:  []string{`button[data-test-modal-close-btn]`},
			Discard:          []string{`.jobs-easy-apply-modal button[aria-label="Dismiss"]`},
			DiscardConfirm:   []string{`button[data-control-name="discard_application_confirm_btn"]`, `button[data-test-dialog-secondary-btn]`},
		},
		Pagination: PaginationSelectors{
			PageButton: `button[aria-label="Page %d"]`,
		},
	}
}

func indeed() *Adapter {
	return &Adapter{
		Name:            types.PlatformIndeed,
		DisplayName:     "Indeed",
		Domain:          "indeed.com",
		JobsURL:         "https://www.indeed.com/jobs",
		JobsURLContains: "indeed.com/jobs",
		SearchURL:       "https://www.indeed.com/jobs?q={keywords}&l={location}",
		Search: SearchSelectors{
			Box:      []string{`#text-input-what`},
			Keyword:  []string{`#text-input-what`},
			Location: []string{`#text-input-where`},
			Submit:   []string{`button[type="submit"]`},
			Results:  []string{`#mosaic-jobResults`, `.jobsearch-ResultsList`},
		},
		Filters: FilterSelectors{
			DatePostedControl: []string{`#filter-dateposted`},
			DatePostedOption:  `a[href*="fromage=%s"]`,
			ShowResultsText:   []string{"show results"},
		},
		Tokens: FilterTokens{
			DatePosted: map[types.DatePosted]string{
				types.DatePosted24h:   "1",
				types.DatePostedWeek:  "7",
				types.DatePostedMonth: "14",
			},
		},
		Cards: CardSelectors{
			Card:           []string{`.job_seen_beacon`, `.jobsearch-ResultsList > li`},
			KeyAttrs:       []string{"data-jk", "id"},
			AppliedMarkers: []string{`[data-testid="applied-indicator"]`},
			AppliedText:    []string{"applied"},
			Link:           []string{`a.jcs-JobTitle`, `h2.jobTitle a`},
			Title:          []string{`h2.jobTitle`, `a.jcs-JobTitle`},
			Company:        []string{`[data-testid="company-name"]`, `.companyName`},
			Location:       []string{`[data-testid="text-location"]`, `.companyLocation`},
			ApplyButton:    []string{`#indeedApplyButton`, `button[aria-label*="Apply now"]`},
		},
		Application: apply.Selectors{
			Modal:          []string{`.ia-BasePage`, `#ia-container`},
			StepButtons:    []string{`button[data-testid*="continue"]`, `.ia-continueButton`, `button[type="submit"]`},
			ActionWords:    append([]string{"apply"}, apply.DefaultActionWords...),
			SubmitWords:    []string{"submit"},
			DismissWords:   []string{"dismiss", "close", "exit"},
			ErrorIndicator: []string{`.css-error`, `[role="alert"]`},
		},
		Pagination: PaginationSelectors{
			Next: []string{`a[data-testid="pagination-page-next"]`, `a[aria-label="Next Page"]`},
		},
	}
}

func naukri() *Adapter {
	return &Adapter{
		Name:            types.PlatformNaukri,
		DisplayName:     "Naukri",
		Domain:          "naukri.com",
		JobsURL:         "https://www.naukri.com/jobs-by-location",
		JobsURLContains: "naukri.com",
		Search: SearchSelectors{
			Box: []string{`#qsb-keyskill-sugg`, `.keywordSugg`, `input[placeholder*="Skills, Designation"]`},
			Keyword: []string{
				`#qsb-keyskill-sugg`,
				`input[name="qp"]`,
				`.keywordSugg input`,
				`input[placeholder*="Skills, Designation"]`,
			},
			Location: []string{`#qsb-location-sugg`, `input[name="ql"]`, `.locationSugg input`, `input[placeholder*="Location"]`},
			Submit:   []string{`#qsbFormBtn`, `.search-btn`, `button[type="submit"]`},
			Results:  []string{`.srp-jobtuple-wrapper`, `.list`, `.styles_jlc__main__VdwtF`},
		},
		Filters: FilterSelectors{
			ExperienceControl: []string{`#experienceDD`, `select[name="exp"]`, `button[data-filter="experience"]`},
			ExperienceOption:  `.dropdownList li[title^="%d"]`,
			ShowResultsText:   []string{"apply filters"},
		},
		Cards: CardSelectors{
			Card:           []string{`.srp-jobtuple-wrapper`, `article.jobTuple`},
			KeyAttrs:       []string{"data-job-id", "id"},
			AppliedMarkers: []string{`.applied`, `.already-applied`},
			AppliedText:    []string{"applied"},
			Link:           []string{`a.title`},
			Title:          []string{`a.title`},
			Company:        []string{`a.comp-name`, `.companyInfo a`},
			Location:       []string{`.locWdth`, `.location`},
			ApplyButton:    []string{`#apply-button`, `button.apply-button`},
		},
		Application: apply.Selectors{
			Modal:          []string{`.chatbot_DrawerContentWrapper`, `.apply-modal`},
			StepButtons:    []string{`.sendMsg`, `button[type="submit"]`},
			ActionWords:    append([]string{"save", "send"}, apply.DefaultActionWords...),
			SubmitWords:    []string{"submit"},
			DismissWords:   []string{"dismiss", "close"},
			ErrorIndicator: []string{`.error`, `.err`},
		},
		Pagination: PaginationSelectors{
			Next: []string{`a.styles_btn-secondary__2AsIP:last-child`, `a[rel="next"]`},
		},
	}
}

func internshala() *Adapter {
	return &Adapter{
		Name:            types.PlatformInternshala,
		DisplayName:     "Internshala",
		Domain:          "internshala.com",
		JobsURL:         "https://internshala.com/internships/",
		JobsURLContains: "internshala.com/internships",
		SearchURL:       "https://internshala.com/internships/keywords-{keywords}/",
		Search: SearchSelectors{
			Box:     []string{`input.search-field`, `input[type="text"][placeholder*="search"]`},
			Keyword: []string{`input.search-field`, `input[type="text"][placeholder*="search"]`},
			Results: []string{`.internship-container`, `#internship_list_container`},
		},
		Filters: FilterSelectors{
			EasyApply:        []string{`#easy_apply_check`, `input[name="easyApply"]`, `.filter-item[data-filter="easy_apply"]`},
			WorkplaceControl: []string{`#work_from_home_check`, `input[name="workFromHome"]`, `#work-from-home`},
			CategoryControl:  []string{`#select_category_chosen`, `.chosen-container-single`},
			CategoryInput:    []string{`.chosen-container-active .chosen-search input`, `.chosen-search-input`},
		},
		Cards: CardSelectors{
			Card:           []string{`.individual_internship.easy_apply`, `.individual_internship`},
			KeyAttrs:       []string{"internshipid", "data-internship_id", "id"},
			AppliedMarkers: []string{`.applied_status`, `.already_applied`},
			AppliedText:    []string{"already applied"},
			Title:          []string{`.job-internship-name`, `.profile`},
			Company:        []string{`.company-name`, `.company_name`},
			Location:       []string{`.locations`, `.location_link`},
			ApplyButton:    []string{`#continue_button`, `button.continue_button`},
		},
		Application: apply.Selectors{
			StepButtons:      []string{`#submit`, `button[type="submit"]`},
			ActionWords:      apply.DefaultActionWords,
			SubmitWords:      []string{"submit"},
			DismissWords:     []string{"dismiss", "close"},
			ErrorIndicator:   []string{`.error_message`, `.form-error`},
			PostSubmitDialog: []string{`#similar_jobs_modal`, `.modal.show`},
			PostSubmitDone:   []string{`#dismiss_similar_job_modal`, `button.continue-applying`},
			PostSubmitClose:  []string{`button.close`},
		},
		Pagination: PaginationSelectors{
			Next: []string{`#load_more_internships`, `.load_more_internships`, `#navigation-forward`},
		},
	}
}

func unstop() *Adapter {
	return &Adapter{
		Name:            types.PlatformUnstop,
		DisplayName:     "Unstop",
		Domain:          "unstop.com",
		JobsURL:         "https://unstop.com/jobs",
		JobsURLContains: "unstop.com/jobs",
		Search: SearchSelectors{
			Box:      []string{`input[placeholder*="Search Jobs"]`, `.search-input`, `input[name="keyword"]`},
			Keyword:  []string{`input[placeholder*="Search Jobs"]`, `.search-input`, `input[name="keyword"]`},
			Location: []string{`input[placeholder*="location"]`, `input[placeholder*="Location"]`},
			Submit:   []string{`.search-button`, `button[type="submit"]`},
			Results:  []string{`.user_list`, `.opportunity-list`},
		},
		Cards: CardSelectors{
			Card:           []string{`.opportunity-card`, `.single_profile`},
			KeyAttrs:       []string{"id", "data-id"},
			AppliedMarkers: []string{`.applied-tag`},
			AppliedText:    []string{"applied"},
			Link:           []string{`a.item`, `a[href*="/jobs/"]`},
			Title:          []string{`h2`, `.opp-title`},
			Company:        []string{`p.single-wrap`, `.org-name`},
			ApplyButton:    []string{`button.apply-btn`, `#apply-btn`},
		},
		Application: apply.Selectors{
			Modal:          []string{`.registration-form`, `app-registration`},
			StepButtons:    []string{`button.btn-next`, `button[type="submit"]`},
			ActionWords:    append([]string{"register"}, apply.DefaultActionWords...),
			SubmitWords:    []string{"submit", "register"},
			DismissWords:   []string{"dismiss", "close", "cancel"},
			ErrorIndicator: []string{`.error-msg`, `mat-error`},
		},
		Pagination: PaginationSelectors{
			Next: []string{`button.next`, `a[aria-label="Next"]`},
		},
	}
}
