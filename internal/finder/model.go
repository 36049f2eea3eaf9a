package finder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
	"github.com/reedge/reedge-services/api/internal/selection"
	"github.com/reedge/reedge-services/api/internal/sheet"
)

// rowPixels converts terminal rows into the pixel unit the sheet snaps in.
const rowPixels = 20

type detailTab int

const (
	tabInfo detailTab = iota
	tabReviews
)

type changedMsg struct{}

type listingMsg struct {
	filter  application.ShopFilter
	listing application.Listing
}

type reviewsMsg struct {
	shopID  string
	slug    string
	reviews []domain.Review
}

// ChangeFeed adapts controller notifications to a channel the program can
// wait on. Notifications are coalesced: the model re-reads the controller.
func ChangeFeed() (<-chan struct{}, selection.Listener) {
	ch := make(chan struct{}, 1)
	return ch, func(selection.State, string) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Options wires a Model.
type Options struct {
	Context    context.Context
	Shops      application.ShopQueryService
	Reviews    application.ReviewQueryService
	Controller *selection.Controller
	History    *History
	Changes    <-chan struct{}
	// Renderer is optional; without it the detail is shown as plain markdown.
	Renderer *glamour.TermRenderer
	Logger   *zap.SugaredLogger
}

type reviewPane struct {
	shopID  string
	items   []domain.Review
	loading bool
	loaded  bool
}

// Model is the bubbletea model of the finder.
type Model struct {
	ctx      context.Context
	shops    application.ShopQueryService
	reviews  application.ReviewQueryService
	ctrl     *selection.Controller
	history  *History
	changes  <-chan struct{}
	renderer *glamour.TermRenderer
	logger   *zap.SugaredLogger
	styles   Styles

	state   selection.State
	listing application.Listing
	loaded  bool
	cursor  int

	input     textinput.Model
	searching bool

	tab    detailTab
	review reviewPane

	sheet    *sheet.Sheet
	dragging bool
	dragFrom int

	width  int
	height int
}

// NewModel builds the initial model.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ti := textinput.New()
	ti.Placeholder = "업체명 또는 주소 검색"
	ti.Prompt = "검색 > "
	ti.SetValue(opts.Controller.Text())

	m := Model{
		ctx:      ctx,
		shops:    opts.Shops,
		reviews:  opts.Reviews,
		ctrl:     opts.Controller,
		history:  opts.History,
		changes:  opts.Changes,
		renderer: opts.Renderer,
		logger:   logger,
		styles:   DefaultStyles(),
		state:    opts.Controller.State(),
		input:    ti,
		sheet:    sheet.New(),
		width:    80,
		height:   24,
	}
	m.resizeSheet()
	return m
}

// Init loads the catalog and starts listening for debounced commits.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.browse(), m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// browse re-derives the listing for the controller's current filter.
func (m Model) browse() tea.Cmd {
	filter := m.ctrl.State().Filter()
	shops, ctx := m.shops, m.ctx
	return func() tea.Msg {
		return listingMsg{filter: filter, listing: shops.Browse(ctx, filter)}
	}
}

func (m Model) loadReviews(shop domain.Shop) tea.Cmd {
	reviews, ctx := m.reviews, m.ctx
	return func() tea.Msg {
		return reviewsMsg{shopID: shop.ID, slug: shop.Slug, reviews: reviews.ForShop(ctx, shop.ID)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - 12
		m.resizeSheet()
		return m, nil

	case changedMsg:
		cmd := m.sync()
		return m, tea.Batch(cmd, m.waitForChange())

	case listingMsg:
		if msg.filter != m.ctrl.State().Filter() {
			// a newer browse is on its way
			return m, nil
		}
		m.listing = msg.listing
		m.loaded = true
		m.state = m.ctrl.State()
		m.clampCursor()
		cmd := m.selectionChanged()
		return m, cmd

	case reviewsMsg:
		// the listing may lag behind the controller, which owns the selection
		if msg.slug != m.ctrl.State().Selected {
			m.logger.Debugw("discarding reviews for a shop that is no longer selected", "shopId", msg.shopID)
			return m, nil
		}
		m.review = reviewPane{shopID: msg.shopID, items: msg.reviews, loaded: true}
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.ctrl.Close()
		return m, tea.Quit
	case tea.KeyEnter:
		m.ctrl.SubmitSearch()
		m.searching = false
		m.input.Blur()
		cmd := m.sync()
		return m, cmd
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.ctrl.TypeSearch(after)
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.Close()
		return m, tea.Quit
	case "/":
		m.searching = true
		cmd := m.input.Focus()
		return m, cmd
	case "up", "k":
		m.cursor--
		m.clampCursor()
		return m, nil
	case "down", "j":
		m.cursor++
		m.clampCursor()
		return m, nil
	case "enter":
		if shop, ok := m.cursorShop(); ok {
			m.ctrl.SelectShop(shop.Slug, false)
		}
	case "o":
		// 地図のプレビューから一覧の詳細へ
		if m.state.View == selection.ViewMap && m.state.Selected != "" {
			m.ctrl.SelectShop(m.state.Selected, true)
		}
	case "esc":
		m.ctrl.ClearSelection()
	case "m":
		m.ctrl.ToggleView()
	case "r":
		m.ctrl.SelectRegion(m.nextRegion(1))
	case "R":
		m.ctrl.SelectRegion(m.nextRegion(-1))
	case "x":
		m.ctrl.ResetFilters()
		m.input.SetValue("")
	case "c":
		m.ctrl.ClearSearch()
		m.input.SetValue("")
	case "tab":
		return m.switchTab()
	case "[":
		if values, ok := m.history.Back(); ok {
			m.ctrl.URLChanged(values)
		}
	case "]":
		if values, ok := m.history.Forward(); ok {
			m.ctrl.URLChanged(values)
		}
	case "+":
		m.sheet.Release(-m.sheet.Threshold)
		return m, nil
	case "-":
		m.sheet.Release(m.sheet.Threshold)
		return m, nil
	default:
		return m, nil
	}
	cmd := m.sync()
	return m, cmd
}

// sync pulls the controller state. View-only changes apply at once; filter
// changes wait for a fresh listing.
func (m *Model) sync() tea.Cmd {
	next := m.ctrl.State()
	if !m.searching {
		if text := m.ctrl.Text(); text != m.input.Value() {
			m.input.SetValue(text)
		}
	}
	if m.loaded && next.Filter() == m.state.Filter() {
		m.state = next
		return nil
	}
	return m.browse()
}

// selectionChanged resets the sheet and the reviews tab when a different shop
// is shown. An open reviews tab loads for the new shop.
func (m *Model) selectionChanged() tea.Cmd {
	selected := m.listing.Selected
	if selected == nil {
		m.review = reviewPane{}
		m.tab = tabInfo
		return nil
	}
	if m.review.shopID == selected.ID {
		return nil
	}
	m.review = reviewPane{}
	if m.tab == tabReviews {
		return m.activateReviews()
	}
	return nil
}

func (m Model) switchTab() (tea.Model, tea.Cmd) {
	if m.listing.Selected == nil {
		return m, nil
	}
	if m.tab == tabReviews {
		m.tab = tabInfo
		return m, nil
	}
	m.tab = tabReviews
	cmd := m.activateReviews()
	return m, cmd
}

// activateReviews starts the lazy load unless the shop's reviews are already
// loaded or in flight.
func (m *Model) activateReviews() tea.Cmd {
	selected := m.listing.Selected
	if selected == nil {
		return nil
	}
	if m.review.shopID == selected.ID && (m.review.loaded || m.review.loading) {
		return nil
	}
	m.review = reviewPane{shopID: selected.ID, loading: true}
	return m.loadReviews(*selected)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.dragging = true
			m.dragFrom = msg.Y
		}
	case tea.MouseActionRelease:
		if !m.dragging {
			return
		}
		m.dragging = false
		m.sheet.Release((msg.Y - m.dragFrom) * rowPixels)
	}
}

// resizeSheet recomputes the snap points for the terminal height, keeping
// the current index.
func (m *Model) resizeSheet() {
	collapsed := 6
	half := m.height / 2
	full := m.height - 4
	if half <= collapsed {
		half = collapsed + 1
	}
	if full <= half {
		full = half + 1
	}
	m.sheet.Points = []int{collapsed * rowPixels, half * rowPixels, full * rowPixels}
	m.sheet.Index = min(m.sheet.Index, len(m.sheet.Points)-1)
}

func (m *Model) clampCursor() {
	n := len(m.listing.Shops)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) cursorShop() (domain.Shop, bool) {
	if m.cursor < 0 || m.cursor >= len(m.listing.Shops) {
		return domain.Shop{}, false
	}
	return m.listing.Shops[m.cursor], true
}

func (m Model) nextRegion(step int) domain.Region {
	choices := append([]domain.Region{domain.RegionAll}, domain.Regions...)
	current := 0
	for i, r := range choices {
		if r == m.state.Region {
			current = i
			break
		}
	}
	next := (current + step + len(choices)) % len(choices)
	return choices[next]
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Re:Edge"))
	b.WriteString(" ")
	b.WriteString(m.styles.Address.Render(m.state.Href("/")))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.regionBar())
	b.WriteString("\n\n")

	if !m.loaded {
		b.WriteString(m.styles.Muted.Render("불러오는 중..."))
		return b.String()
	}

	sheetRows := 0
	if m.state.Selected != "" {
		sheetRows = m.sheet.Offset() / rowPixels
	}
	bodyRows := max(m.height-sheetRows-6, 3)

	if m.state.View == selection.ViewMap {
		b.WriteString(m.mapView(bodyRows))
	} else {
		b.WriteString(m.listView(bodyRows))
	}
	b.WriteString("\n")

	if m.state.Selected != "" {
		b.WriteString(m.sheetView(sheetRows))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render("/ 검색  r 지역  x 초기화  m 목록/지도  enter 선택  esc 닫기  tab 후기  [ ] 이동  q 종료"))
	return b.String()
}

func (m Model) regionBar() string {
	chips := []string{m.chip("전체", m.state.Region == domain.RegionAll)}
	for _, r := range domain.Regions {
		chips = append(chips, m.chip(r.String(), m.state.Region == r))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(chips, ""))
}

func (m Model) chip(label string, active bool) string {
	if active {
		return m.styles.ChipActive.Render(label)
	}
	return m.styles.Chip.Render(label)
}

func (m Model) listView(rows int) string {
	if len(m.listing.Shops) == 0 {
		return m.emptyState()
	}
	var lines []string
	lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("%d / %d곳", len(m.listing.Shops), m.listing.Total)))
	for i, shop := range m.listing.Shops {
		line := shop.Name + "  " + m.styles.Address.Render(shop.Address)
		if shop.Slug == m.state.Selected {
			line = m.styles.Selected.Render("● ") + line
		}
		if i == m.cursor {
			lines = append(lines, m.styles.Cursor.Render("> ")+line)
		} else {
			lines = append(lines, m.styles.Item.Render(line))
		}
	}
	return strings.Join(window(lines, m.cursor+1, rows), "\n")
}

func (m Model) mapView(rows int) string {
	if len(m.listing.Shops) == 0 {
		return m.emptyState()
	}
	view := m.listing.Map
	header := m.styles.Muted.Render(fmt.Sprintf("중심 %.4f, %.4f · 줌 %d · 마커 %d", view.Center.Lat, view.Center.Lng, view.Zoom, len(view.Markers)))
	lines := append([]string{header}, plotMarkers(view, m.state.Selected, max(m.width-2, 10), max(rows-3, 3))...)
	if shop, ok := m.cursorShop(); ok {
		lines = append(lines, m.styles.Cursor.Render("> ")+shop.Name)
	}
	return strings.Join(lines, "\n")
}

func (m Model) emptyState() string {
	return m.styles.Empty.Render("검색 결과가 없습니다.\nx: 필터 초기화")
}

func (m Model) sheetView(rows int) string {
	var body string
	switch {
	case m.listing.SelectedMissing:
		body = m.styles.Empty.Render("업체를 찾을 수 없습니다.")
	case m.listing.Selected == nil:
		body = m.styles.Muted.Render("불러오는 중...")
	case m.state.View == selection.ViewMap:
		shop := m.listing.Selected
		body = shop.Name + "\n" + m.styles.Address.Render(shop.Address) + "\n" + m.styles.Muted.Render("o: 상세 보기")
	default:
		tabs := m.tabLabel("정보", m.tab == tabInfo) + m.tabLabel("후기", m.tab == tabReviews)
		if m.tab == tabReviews {
			body = tabs + "\n" + m.reviewsView()
		} else {
			body = tabs + "\n" + m.renderDetail(*m.listing.Selected)
		}
	}
	lines := strings.Split(body, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	return m.styles.Sheet.Width(max(m.width-2, 10)).Render(strings.Join(lines, "\n"))
}

func (m Model) tabLabel(label string, active bool) string {
	if active {
		return m.styles.TabActive.Render(label)
	}
	return m.styles.Tab.Render(label)
}

func (m Model) reviewsView() string {
	if m.review.loading {
		return m.styles.Muted.Render("후기를 불러오는 중...")
	}
	if len(m.review.items) == 0 {
		return m.styles.Muted.Render(domain.Fallback(domain.FieldReviews))
	}
	lines := make([]string, 0, len(m.review.items))
	for _, r := range m.review.items {
		line := "- " + r.Title
		if r.Source != "" {
			line += " · " + r.Source
		}
		lines = append(lines, line, m.styles.Address.Render("  "+r.URL))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDetail(shop domain.Shop) string {
	md := detailMarkdown(shop)
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		m.logger.Warnw("markdown render failed", "slug", shop.Slug, "error", err)
		return md
	}
	return strings.Trim(out, "\n")
}

// window returns at most rows lines that keep line focus visible. The first
// line is treated as a header and always kept.
func window(lines []string, focus, rows int) []string {
	if len(lines) <= rows || rows < 2 {
		return lines
	}
	start := 1
	if focus >= rows {
		start = focus - rows + 2
	}
	end := min(start+rows-1, len(lines))
	return append([]string{lines[0]}, lines[start:end]...)
}
