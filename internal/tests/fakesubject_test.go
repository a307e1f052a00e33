package tests

import (
	"bufio"
	"fmt"
	"net"
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/ewxrjk/inntest/internal/probe"
	"github.com/ewxrjk/inntest/internal/wildmat"
)

// fakeSubject is a minimal in-memory reader-mode NNTP server used only to
// exercise the registered tests end-to-end in this package's own test
// suite. It is not a teacher-derived component: the real subject under
// test is always an external server reached via config.Config.Address.
type fakeSubject struct {
	mu       sync.Mutex
	articles map[string]*probe.Article // by message-id
	numbers  map[int]string            // article number -> message-id
	next     int
	group    string
}

func newFakeSubject(group string) *fakeSubject {
	return &fakeSubject{
		articles: make(map[string]*probe.Article),
		numbers:  make(map[int]string),
		next:     1,
		group:    group,
	}
}

func startFakeSubject(t *testing.T, fs *fakeSubject) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go fs.serve(conn)
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func (fs *fakeSubject) serve(conn net.Conn) {
	defer conn.Close()
	w := bufio.NewWriter(conn)
	r := bufio.NewReader(conn)

	send := func(line string) { w.WriteString(line + "\r\n"); w.Flush() }
	sendBlock := func(lines []string) {
		for _, l := range lines {
			if strings.HasPrefix(l, ".") {
				l = "." + l
			}
			w.WriteString(l + "\r\n")
		}
		w.WriteString(".\r\n")
		w.Flush()
	}

	send("200 test subject ready")

	// The greeting already declares posting allowed (code 200), so a
	// client that never bothers with MODE READER can still POST.
	posting := true
	selected := false
	current := 0
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd := strings.ToUpper(fields[0])

		switch cmd {
		case "CAPABILITIES":
			send("101 capabilities follow")
			sendBlock([]string{"VERSION 2", "READER", "IHAVE", "LIST ACTIVE NEWSGROUPS OVERVIEW.FMT", "OVER", "MODE-READER"})

		case "MODE":
			if len(fields) > 1 && strings.EqualFold(fields[1], "READER") {
				posting = true
				send("200 reader mode, posting allowed")
			} else {
				send("501 syntax error")
			}

		case "GROUP":
			if len(fields) < 2 || fields[1] != fs.group {
				send("411 no such group")
				continue
			}
			low, high, count := fs.range_()
			selected = true
			current = low
			send(fmt.Sprintf("211 %d %d %d %s", count, low, high, fs.group))

		case "LISTGROUP":
			name := fs.group
			if len(fields) >= 2 {
				name = fields[1]
			}
			if name != fs.group {
				send("411 no such group")
				continue
			}
			low, high, count := fs.range_()
			selected = true
			current = low
			send(fmt.Sprintf("211 %d %d %d %s", count, low, high, fs.group))
			sendBlock(fs.numberLines())

		case "POST":
			if !posting {
				send("440 posting not allowed")
				continue
			}
			send("340 send article")
			lines := readBlock(r)
			article := probe.FromLines(lines)
			if !fs.validate(article) {
				send("441 posting failed")
				continue
			}
			fs.store(article)
			send("240 article posted ok")

		case "IHAVE":
			send("335 send article")
			lines := readBlock(r)
			article := probe.FromLines(lines)
			if !fs.validate(article) {
				send("437 article rejected, content rules violation")
				continue
			}
			fs.store(article)
			send("235 article transferred ok")

		case "ARTICLE":
			current = fs.handleRetrieval(fields, send, sendBlock, true, selected, current)

		case "STAT":
			current = fs.handleRetrieval(fields, send, sendBlock, false, selected, current)

		case "HEAD":
			current = fs.handleRetrieval(fields, send, sendBlock, true, selected, current)

		case "BODY":
			current = fs.handleRetrieval(fields, send, sendBlock, true, selected, current)

		case "NEXT":
			current = fs.handleNavigate(send, selected, current, true)

		case "LAST":
			current = fs.handleNavigate(send, selected, current, false)

		case "HDR":
			fs.handleHdr(fields, send, sendBlock)

		case "OVER":
			fs.handleOver(fields, send, sendBlock)

		case "LIST":
			fs.handleList(fields, send, sendBlock)

		case "DATE":
			send("111 20250115120000")

		case "NEWNEWS":
			send("230 new news follows")
			sendBlock(nil)

		case "QUIT":
			send("205 closing connection")
			return

		default:
			send("500 command not recognized")
		}
	}
}

func readBlock(r *bufio.Reader) []string {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return lines
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "." {
			return lines
		}
		if strings.HasPrefix(line, "..") {
			line = line[1:]
		}
		lines = append(lines, line)
	}
}

func (fs *fakeSubject) store(article *probe.Article) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	id, _ := article.MessageID()
	n := fs.next
	fs.next++
	fs.articles[id] = article
	fs.numbers[n] = id
}

func (fs *fakeSubject) range_() (low, high, count int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.numbers) == 0 {
		return 1, 0, 0
	}
	nums := make([]int, 0, len(fs.numbers))
	for n := range fs.numbers {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums[0], nums[len(nums)-1], len(nums)
}

// handleRetrieval serves ARTICLE/HEAD/BODY/STAT and returns the (possibly
// updated) current-article pointer. A numeric selector requires a group to
// already be selected and, on success, becomes the new current article;
// a message-id selector works regardless of selection and never moves the
// pointer, matching RFC 3977 §9.3.
func (fs *fakeSubject) handleRetrieval(fields []string, send func(string), sendBlock func([]string), withBody bool, selected bool, current int) int {
	if len(fields) < 2 {
		send("412 no newsgroup selected")
		return current
	}
	sel := fields[1]

	if strings.HasPrefix(sel, "<") {
		fs.mu.Lock()
		article := fs.articles[sel]
		fs.mu.Unlock()
		if article == nil {
			send("430 no such article")
			return current
		}
		fs.sendArticle(send, sendBlock, withBody, 0, sel, article)
		return current
	}

	if len(sel) > 16 || !isDigits(sel) {
		send("501 syntax error")
		return current
	}
	if !selected {
		send("412 no newsgroup selected")
		return current
	}
	n, _ := strconv.Atoi(sel)

	fs.mu.Lock()
	id, ok := fs.numbers[n]
	var article *probe.Article
	if ok {
		article = fs.articles[id]
	}
	fs.mu.Unlock()

	if !ok {
		send("423 no such article number in this group")
		return current
	}
	fs.sendArticle(send, sendBlock, withBody, n, id, article)
	return n
}

func (fs *fakeSubject) sendArticle(send func(string), sendBlock func([]string), withBody bool, n int, id string, article *probe.Article) {
	code := "223"
	if withBody {
		code = "220"
	}
	send(fmt.Sprintf("%s %d %s", code, n, id))
	if withBody {
		sendBlock(article.Lines())
	}
}

// handleNavigate serves NEXT (forward=true) and LAST (forward=false),
// returning the updated current-article pointer.
func (fs *fakeSubject) handleNavigate(send func(string), selected bool, current int, forward bool) int {
	if !selected {
		send("412 no newsgroup selected")
		return current
	}

	fs.mu.Lock()
	nums := make([]int, 0, len(fs.numbers))
	for n := range fs.numbers {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var next int
	found := false
	if forward {
		for _, n := range nums {
			if n > current {
				next = n
				found = true
				break
			}
		}
	} else {
		for i := len(nums) - 1; i >= 0; i-- {
			if nums[i] < current {
				next = nums[i]
				found = true
				break
			}
		}
	}
	var id string
	if found {
		id = fs.numbers[next]
	}
	fs.mu.Unlock()

	if !found {
		if forward {
			send("421 no next article in this group")
		} else {
			send("422 no previous article in this group")
		}
		return current
	}
	send(fmt.Sprintf("223 %d %s", next, id))
	return next
}

func (fs *fakeSubject) handleHdr(fields []string, send func(string), sendBlock func([]string)) {
	if len(fields) < 3 {
		send("420 no article(s) selected")
		return
	}
	parts := strings.SplitN(fields[2], "-", 2)
	low, _ := strconv.Atoi(parts[0])
	high := low
	if len(parts) > 1 {
		high, _ = strconv.Atoi(parts[1])
	}

	fs.mu.Lock()
	nums := make([]int, 0, len(fs.numbers))
	for n := range fs.numbers {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var lines []string
	for _, n := range nums {
		if n < low || n > high {
			continue
		}
		a := fs.articles[fs.numbers[n]]
		value, _ := a.Header(fields[1])
		lines = append(lines, fmt.Sprintf("%d %s", n, value))
	}
	fs.mu.Unlock()

	send("225 headers follow")
	sendBlock(lines)
}

func (fs *fakeSubject) numberLines() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	nums := make([]int, 0, len(fs.numbers))
	for n := range fs.numbers {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	lines := make([]string, len(nums))
	for i, n := range nums {
		lines[i] = strconv.Itoa(n)
	}
	return lines
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

var fromRE = regexp.MustCompile(`^\S+@\S+$`)

// validate applies just enough RFC 5536/5322 shape-checking for the
// errors_bad_post/errors_bad_ihave cases to exercise real rejection
// behaviour against this fake, rather than accepting every article.
func (fs *fakeSubject) validate(a *probe.Article) bool {
	counts := map[string]int{}
	for _, l := range a.HeaderLines() {
		name := strings.ToLower(strings.SplitN(l, ":", 2)[0])
		counts[name]++
	}
	for _, name := range []string{"newsgroups", "from", "subject", "date"} {
		if counts[name] > 1 {
			return false
		}
	}

	subject, ok := a.Header("Subject")
	if !ok || subject == "" {
		return false
	}
	from, ok := a.Header("From")
	if !ok || !fromRE.MatchString(from) {
		return false
	}
	newsgroups, ok := a.Header("Newsgroups")
	if !ok || newsgroups != fs.group {
		return false
	}
	if date, ok := a.Header("Date"); ok {
		if _, err := mail.ParseDate(date); err != nil {
			return false
		}
	}
	if id, ok := a.MessageID(); ok && !probe.ValidMessageID(id) {
		return false
	}
	return true
}

func (fs *fakeSubject) handleOver(fields []string, send func(string), sendBlock func([]string)) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fields) < 2 {
		send("420 no article(s) selected")
		return
	}
	parts := strings.SplitN(fields[1], "-", 2)
	low, _ := strconv.Atoi(parts[0])
	high := low
	if len(parts) > 1 {
		high, _ = strconv.Atoi(parts[1])
	}

	var lines []string
	nums := make([]int, 0, len(fs.numbers))
	for n := range fs.numbers {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	for _, n := range nums {
		if n < low || n > high {
			continue
		}
		id := fs.numbers[n]
		a := fs.articles[id]
		subject, _ := a.Header("Subject")
		from, _ := a.Header("From")
		lines = append(lines, fmt.Sprintf("%d\t%s\t%s\t\t%s\t\t0\t%d", n, subject, from, id, len(a.Body())))
	}
	send("224 overview follows")
	sendBlock(lines)
}

func (fs *fakeSubject) handleList(fields []string, send func(string), sendBlock func([]string)) {
	if len(fields) >= 2 && strings.EqualFold(fields[1], "OVERVIEW.FMT") {
		send("215 overview format follows")
		sendBlock([]string{"Subject:", "From:", "Date:", "Message-ID:", "References:", "Bytes:", "Lines:"})
		return
	}

	line := fs.group + " 0000000001 0000000001 y"
	if len(fields) >= 3 && strings.EqualFold(fields[1], "ACTIVE") {
		m, err := wildmat.Compile(fields[2])
		if err == nil && !m.Match(fs.group) {
			line = ""
		}
	}
	send("215 list of newsgroups follows")
	if line == "" {
		sendBlock(nil)
	} else {
		sendBlock([]string{line})
	}
}
