// Package nntp implements the client and server halves of an RFC 3977 NNTP
// session, including the RFC 4643 AUTHINFO, RFC 4644 streaming (MODE
// STREAM/CHECK/TAKETHIS), and RFC 6048 LIST extensions the conformance
// tests exercise.
package nntp

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/ewxrjk/inntest/internal/probe"
	"github.com/ewxrjk/inntest/internal/stopper"
	"github.com/ewxrjk/inntest/internal/wire"
	"github.com/ewxrjk/inntest/pkg/nntplog"
)

// Credentials carries the two credential pairs a client may need: NNRP
// (reader-mode posting) and NNTP (peering/transit), selected by whichever
// the capability set says applies.
type Credentials struct {
	NNRPUser     string
	NNRPPassword string
	NTPUser      string
	NTPPassword  string
}

// sessionState tracks where a Client sits in the connect/greet/close lifecycle.
type sessionState int

const (
	stateFresh sessionState = iota
	stateGreeted
	stateClosed
)

// Client is one NNTP client session.
type Client struct {
	conn  net.Conn
	wire  *wire.Conn
	state sessionState

	postingAllowed bool
	currentGroup   string

	caps       *Capabilities
	overview   OverviewFormat
	haveOver   bool
	streaming  bool
	haveStream bool

	creds Credentials
}

// Dial connects to address, reads the greeting, and returns a ready Client.
func Dial(address string, timeout time.Duration, stop *stopper.Coordinator, creds Credentials) (*Client, error) {
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, newError(KindTransport, "connect", 0, "dial %s: %v", address, err)
	}

	c := &Client{
		conn:  conn,
		wire:  wire.New(conn, stop),
		creds: creds,
	}

	line, err := c.wire.ReceiveLine()
	if err != nil {
		conn.Close()
		return nil, newError(KindTransport, "connect", 0, "reading greeting: %v", err)
	}
	resp, err := wire.ParseResponse(line)
	if err != nil {
		conn.Close()
		return nil, newError(KindProtocol, "connect", 0, "malformed greeting %q", line)
	}

	switch resp.Code {
	case 200:
		c.postingAllowed = true
	case 201:
		c.postingAllowed = false
	case 400, 502:
		conn.Close()
		return nil, newError(KindTransport, "connect", resp.Code, "service unavailable: %s", resp.Arg)
	default:
		conn.Close()
		return nil, newError(KindProtocol, "connect", resp.Code, "unexpected greeting %q", line)
	}

	c.state = stateGreeted
	nntplog.Debug("nntp: connected to %s, posting=%v", address, c.postingAllowed)
	return c, nil
}

// PostingAllowed reports the posting permission advertised at connect time.
func (c *Client) PostingAllowed() bool { return c.postingAllowed }

// CurrentGroup returns the group selected by the last successful GROUP.
func (c *Client) CurrentGroup() string { return c.currentGroup }

// Transact exposes the low-level transact primitive for tests
// that need to send a raw command line not covered by a typed method, such
// as the bad-command conformance checks.
func (c *Client) Transact(cmd string) (wire.Response, error) {
	return c.transact(cmd)
}

// transact sends cmd, waits for one response, and on 480 attempts exactly
// one AUTHINFO exchange before replaying cmd.
func (c *Client) transact(cmd string) (wire.Response, error) {
	if err := c.wire.SendLine(cmd); err != nil {
		return wire.Response{}, newError(KindTransport, cmd, 0, "write: %v", err)
	}
	line, err := c.wire.ReceiveLine()
	if err != nil {
		return wire.Response{}, newError(KindTransport, cmd, 0, "read: %v", err)
	}
	resp, err := wire.ParseResponse(line)
	if err != nil {
		return wire.Response{}, newError(KindProtocol, cmd, 0, "malformed response %q", line)
	}

	if resp.Code != 480 {
		return resp, nil
	}

	if err := c.authenticate(); err != nil {
		return wire.Response{}, err
	}

	if err := c.wire.SendLine(cmd); err != nil {
		return wire.Response{}, newError(KindTransport, cmd, 0, "write (retry): %v", err)
	}
	line, err = c.wire.ReceiveLine()
	if err != nil {
		return wire.Response{}, newError(KindTransport, cmd, 0, "read (retry): %v", err)
	}
	resp, err = wire.ParseResponse(line)
	if err != nil {
		return wire.Response{}, newError(KindProtocol, cmd, 0, "malformed response %q (retry)", line)
	}
	if resp.Code == 480 {
		return wire.Response{}, newError(KindAuthRequired, cmd, 480, "authentication retry also failed")
	}
	return resp, nil
}

// authenticate runs a single AUTHINFO USER/PASS exchange, choosing the NNRP
// or NNTP credential pair according to whether READER is in the capability
// set.
func (c *Client) authenticate() error {
	user, pass := c.creds.NTPUser, c.creds.NTPPassword
	if c.caps.Has("READER") {
		user, pass = c.creds.NNRPUser, c.creds.NNRPPassword
	}

	if err := c.wire.SendLine("AUTHINFO USER " + user); err != nil {
		return newError(KindTransport, "authinfo", 0, "write: %v", err)
	}
	line, err := c.wire.ReceiveLine()
	if err != nil {
		return newError(KindTransport, "authinfo", 0, "read: %v", err)
	}
	resp, err := wire.ParseResponse(line)
	if err != nil {
		return newError(KindProtocol, "authinfo", 0, "malformed response %q", line)
	}
	switch resp.Code {
	case 281:
		return nil
	case 381:
		// proceed to PASS
	default:
		return newError(KindAuthRequired, "authinfo user", resp.Code, "rejected: %s", resp.Arg)
	}

	if err := c.wire.SendLine("AUTHINFO PASS " + pass); err != nil {
		return newError(KindTransport, "authinfo pass", 0, "write: %v", err)
	}
	line, err = c.wire.ReceiveLine()
	if err != nil {
		return newError(KindTransport, "authinfo pass", 0, "read: %v", err)
	}
	resp, err = wire.ParseResponse(line)
	if err != nil {
		return newError(KindProtocol, "authinfo pass", 0, "malformed response %q", line)
	}
	if resp.Code != 281 {
		return newError(KindAuthRequired, "authinfo pass", resp.Code, "rejected: %s", resp.Arg)
	}
	return nil
}

// Capabilities issues CAPABILITIES once per session and caches the result.
// A non-101 response yields an empty cache rather than an error, per spec.
func (c *Client) Capabilities() (*Capabilities, error) {
	if c.caps != nil {
		return c.caps, nil
	}
	resp, err := c.transact("CAPABILITIES")
	if err != nil {
		return nil, err
	}
	if resp.Code != 101 {
		c.caps = &Capabilities{args: map[string][]string{}}
		return c.caps, nil
	}
	lines, err := c.wire.ReceiveBlock()
	if err != nil {
		return nil, newError(KindTransport, "capabilities", 0, "reading block: %v", err)
	}
	c.caps = ParseCapabilities(lines)
	return c.caps, nil
}

// invalidateCaches clears capability, overview, and streaming caches, as
// required after any MODE transition.
func (c *Client) invalidateCaches() {
	c.caps = nil
	c.overview = nil
	c.haveOver = false
	c.haveStream = false
}

// RequireReader issues MODE READER if not already in reader mode and the
// server advertises it, or if the capability cache was empty.
func (c *Client) RequireReader() error {
	caps, err := c.Capabilities()
	if err != nil {
		return err
	}
	if caps.Has("READER") {
		return nil
	}
	if !caps.Empty() && !caps.Has("MODE-READER") {
		return newError(KindUnsupported, "require_reader", 0, "server does not advertise reader mode")
	}

	resp, err := c.transact("MODE READER")
	if err != nil {
		return err
	}
	if resp.Code != 200 && resp.Code != 201 {
		return newError(KindUnsupported, "require_reader", resp.Code, "MODE READER refused: %s", resp.Arg)
	}
	c.postingAllowed = resp.Code == 200
	c.invalidateCaches()
	return nil
}

// Group sends GROUP name.
func (c *Client) Group(name string) (count, low, high int, err error) {
	resp, err := c.transact("GROUP " + name)
	if err != nil {
		return 0, 0, 0, err
	}
	if resp.Code == 411 {
		return 0, 0, 0, newError(KindNoSuchGroup, "group", 411, "no such group %q", name)
	}
	if resp.Code != 211 {
		return 0, 0, 0, newError(KindProtocol, "group", resp.Code, "unexpected response: %s", resp.Arg)
	}
	fields := strings.Fields(resp.Arg)
	if len(fields) < 4 {
		return 0, 0, 0, newError(KindProtocol, "group", resp.Code, "malformed 211 argument %q", resp.Arg)
	}
	count, err1 := strconv.Atoi(fields[0])
	low, err2 := strconv.Atoi(fields[1])
	high, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, newError(KindProtocol, "group", resp.Code, "malformed 211 argument %q", resp.Arg)
	}
	c.currentGroup = fields[3]
	return count, low, high, nil
}

// ListGroup sends LISTGROUP, optionally naming a different group; the
// low-high range is sent only when group is also given.
func (c *Client) ListGroup(low, high int, group string) (count, lo, hi int, numbers []int, err error) {
	cmd := "LISTGROUP"
	if group != "" {
		cmd += " " + group
		if low != 0 || high != 0 {
			cmd += fmt.Sprintf(" %d-%d", low, high)
		}
	}
	resp, err := c.transact(cmd)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	if resp.Code != 211 {
		return 0, 0, 0, nil, newError(KindProtocol, "listgroup", resp.Code, "unexpected response: %s", resp.Arg)
	}
	fields := strings.Fields(resp.Arg)
	if len(fields) >= 3 {
		count, _ = strconv.Atoi(fields[0])
		lo, _ = strconv.Atoi(fields[1])
		hi, _ = strconv.Atoi(fields[2])
	}

	lines, err := c.wire.ReceiveBlock()
	if err != nil {
		return 0, 0, 0, nil, newError(KindTransport, "listgroup", 0, "reading block: %v", err)
	}
	for _, line := range lines {
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return 0, 0, 0, nil, newError(KindProtocol, "listgroup", 0, "malformed article number %q", line)
		}
		numbers = append(numbers, n)
	}
	return count, lo, hi, numbers, nil
}

// selectorCommand issues cmd for ARTICLE/HEAD/BODY/STAT style retrieval
// verbs: it returns the article number, message-id, and (unless noBody) the
// body block. 423/430 yield a nil triple; any other non-2xx is an error.
func (c *Client) selectorCommand(verb string, selector interface{}, noBody bool) (int, string, []string, error) {
	cmd := verb
	switch v := selector.(type) {
	case nil:
		// current article
	case int:
		cmd += fmt.Sprintf(" %d", v)
	case string:
		cmd += " " + v
	default:
		return 0, "", nil, newError(KindProtocol, strings.ToLower(verb), 0, "invalid selector %T", selector)
	}

	resp, err := c.transact(cmd)
	if err != nil {
		return 0, "", nil, err
	}

	switch resp.Code {
	case 220, 221, 222, 223:
		// fall through to parse below
	case 423, 430:
		return 0, "", nil, nil
	case 412:
		return 0, "", nil, newError(KindNoSuchGroup, strings.ToLower(verb), 412, "no newsgroup selected")
	default:
		return 0, "", nil, newError(KindProtocol, strings.ToLower(verb), resp.Code, "unexpected response: %s", resp.Arg)
	}

	fields := strings.SplitN(resp.Arg, " ", 2)
	if len(fields) < 2 {
		return 0, "", nil, newError(KindProtocol, strings.ToLower(verb), resp.Code, "malformed argument %q", resp.Arg)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", nil, newError(KindProtocol, strings.ToLower(verb), resp.Code, "malformed article number %q", fields[0])
	}
	id := strings.Fields(fields[1])[0]

	if noBody {
		return n, id, nil, nil
	}
	body, err := c.wire.ReceiveBlock()
	if err != nil {
		return 0, "", nil, newError(KindTransport, strings.ToLower(verb), 0, "reading body: %v", err)
	}
	return n, id, body, nil
}

// Article retrieves the full article for selector (nil=current, int=by
// number, string=by message-id).
func (c *Client) Article(selector interface{}) (int, string, []string, error) {
	return c.selectorCommand("ARTICLE", selector, false)
}

// Head retrieves only the header block.
func (c *Client) Head(selector interface{}) (int, string, []string, error) {
	return c.selectorCommand("HEAD", selector, false)
}

// Body retrieves only the body block.
func (c *Client) Body(selector interface{}) (int, string, []string, error) {
	return c.selectorCommand("BODY", selector, false)
}

// Stat issues STAT; it never reads a body block.
func (c *Client) Stat(selector interface{}) (int, string, error) {
	n, id, _, err := c.selectorCommand("STAT", selector, true)
	return n, id, err
}

// Next advances to the next article; returns (0, "", nil) at the 421
// boundary.
func (c *Client) Next() (int, string, error) {
	n, id, _, err := c.selectorCommand("NEXT", nil, true)
	if e, ok := err.(*Error); ok && e.Code == 421 {
		return 0, "", nil
	}
	return n, id, err
}

// Last retreats to the previous article; returns (0, "", nil) at the 422
// boundary.
func (c *Client) Last() (int, string, error) {
	n, id, _, err := c.selectorCommand("LAST", nil, true)
	if e, ok := err.(*Error); ok && e.Code == 422 {
		return 0, "", nil
	}
	return n, id, err
}

// Date returns the server's clock as a 14-digit UTC timestamp.
func (c *Client) Date() (time.Time, error) {
	resp, err := c.transact("DATE")
	if err != nil {
		return time.Time{}, err
	}
	if resp.Code != 111 {
		return time.Time{}, newError(KindProtocol, "date", resp.Code, "unexpected response: %s", resp.Arg)
	}
	return ParseDATE(resp.Arg)
}

// Help returns the block following a 100 response.
func (c *Client) Help() ([]string, error) {
	resp, err := c.transact("HELP")
	if err != nil {
		return nil, err
	}
	if resp.Code != 100 {
		return nil, newError(KindProtocol, "help", resp.Code, "unexpected response: %s", resp.Arg)
	}
	return c.wire.ReceiveBlock()
}

// NewGroups sends NEWGROUPS date time [GMT] and returns the block of group
// names.
func (c *Client) NewGroups(date string, time_ string, gmt bool) ([]string, error) {
	cmd := "NEWGROUPS " + date + " " + time_
	if gmt {
		cmd += " GMT"
	}
	resp, err := c.transact(cmd)
	if err != nil {
		return nil, err
	}
	if resp.Code != 231 {
		return nil, newError(KindProtocol, "newgroups", resp.Code, "unexpected response: %s", resp.Arg)
	}
	return c.wire.ReceiveBlock()
}

// NewNews sends NEWNEWS wildmat date time [GMT] and returns the block of
// message-ids.
func (c *Client) NewNews(wildmat, date, time_ string, gmt bool) ([]string, error) {
	cmd := "NEWNEWS " + wildmat + " " + date + " " + time_
	if gmt {
		cmd += " GMT"
	}
	resp, err := c.transact(cmd)
	if err != nil {
		return nil, err
	}
	if resp.Code != 230 {
		return nil, newError(KindProtocol, "newnews", resp.Code, "unexpected response: %s", resp.Arg)
	}
	return c.wire.ReceiveBlock()
}

// List sends LIST [keyword [wildmat]]. keyword="" means plain LIST
// (equivalent to LIST ACTIVE). Returns (nil, nil) for a 503 (keyword known
// but unsupported right now).
func (c *Client) List(keyword, wildmat string) ([]string, error) {
	if keyword != "" && !c.isKnownListKeyword(keyword) {
		if err := c.RequireReader(); err != nil {
			return nil, err
		}
	}

	cmd := "LIST"
	if keyword != "" {
		cmd += " " + keyword
		if wildmat != "" {
			cmd += " " + wildmat
		}
	}
	resp, err := c.transact(cmd)
	if err != nil {
		return nil, err
	}
	switch resp.Code {
	case 215:
		return c.wire.ReceiveBlock()
	case 503:
		return nil, nil
	default:
		return nil, newError(KindProtocol, "list", resp.Code, "unexpected response: %s", resp.Arg)
	}
}

func (c *Client) isKnownListKeyword(keyword string) bool {
	caps, err := c.Capabilities()
	if err != nil || caps.Empty() {
		return false
	}
	args, ok := caps.Args("LIST")
	if !ok {
		return false
	}
	keyword = strings.ToUpper(keyword)
	for _, a := range args {
		if strings.ToUpper(a) == keyword {
			return true
		}
	}
	return false
}

// overviewFormatCached lazily fetches and caches LIST OVERVIEW.FMT.
func (c *Client) overviewFormatCached() (OverviewFormat, error) {
	if c.haveOver {
		return c.overview, nil
	}
	lines, err := c.List("OVERVIEW.FMT", "")
	if err != nil {
		return nil, err
	}
	c.overview = ParseOverviewFormat(lines)
	c.haveOver = true
	return c.overview, nil
}

// Over issues OVER for the article range low-high; OverID covers the
// message-id form. Returns nil, nil for 420/430 (no such article/range); an
// empty non-nil slice for 423.
func (c *Client) Over(low, high int) ([]string, error) {
	return c.overCmd(fmt.Sprintf("%d-%d", low, high))
}

// OverID issues OVER <message-id>.
func (c *Client) OverID(id string) ([]string, error) {
	return c.overCmd(id)
}

func (c *Client) overCmd(arg string) ([]string, error) {
	resp, err := c.transact("OVER " + arg)
	if err != nil {
		return nil, err
	}
	switch resp.Code {
	case 224:
		return c.wire.ReceiveBlock()
	case 423:
		return []string{}, nil
	case 420, 430:
		return nil, nil
	default:
		return nil, newError(KindProtocol, "over", resp.Code, "unexpected response: %s", resp.Arg)
	}
}

// ParseOverviewLine parses one line returned by Over/OverID using the
// session's cached overview format, fetching it lazily if needed.
func (c *Client) ParseOverviewLine(line string) (int, map[string]string, error) {
	format, err := c.overviewFormatCached()
	if err != nil {
		return 0, nil, err
	}
	return ParseOverviewLine(format, line)
}

// HdrPair is one (article number, value) result from Hdr.
type HdrPair struct {
	Number int
	Value  string
}

// Hdr issues HDR header low-high|id. Returns nil, nil for 420/430, an empty
// non-nil slice for 423.
func (c *Client) Hdr(header string, arg string) ([]HdrPair, error) {
	resp, err := c.transact("HDR " + header + " " + arg)
	if err != nil {
		return nil, err
	}
	switch resp.Code {
	case 423:
		return []HdrPair{}, nil
	case 420, 430:
		return nil, nil
	case 225:
		// fall through
	default:
		return nil, newError(KindProtocol, "hdr", resp.Code, "unexpected response: %s", resp.Arg)
	}

	lines, err := c.wire.ReceiveBlock()
	if err != nil {
		return nil, newError(KindTransport, "hdr", 0, "reading block: %v", err)
	}
	pairs := make([]HdrPair, 0, len(lines))
	for _, line := range lines {
		fields := strings.SplitN(line, " ", 2)
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, newError(KindProtocol, "hdr", 225, "malformed line %q", line)
		}
		value := ""
		if len(fields) > 1 {
			value = fields[1]
		}
		pairs = append(pairs, HdrPair{Number: n, Value: value})
	}
	return pairs, nil
}

// Streaming reports whether RFC 4644 streaming is available, issuing MODE
// STREAM if STREAMING is not already in the capability set.
func (c *Client) Streaming() (bool, error) {
	if c.haveStream {
		return c.streaming, nil
	}
	caps, err := c.Capabilities()
	if err != nil {
		return false, err
	}
	if caps.Has("STREAMING") {
		c.streaming, c.haveStream = true, true
		return true, nil
	}
	resp, err := c.transact("MODE STREAM")
	if err != nil {
		return false, err
	}
	c.streaming = resp.Code == 203
	c.haveStream = true
	return c.streaming, nil
}

// Post requires reader mode and posts article. Returns the terminal
// response code (240 on success; 335/435/436 from the first phase and
// 436/437 from the second pass through). A 441 is returned as an error.
func (c *Client) Post(article *probe.Article) (int, error) {
	if err := c.RequireReader(); err != nil {
		return 0, err
	}
	resp, err := c.transact("POST")
	if err != nil {
		return 0, err
	}
	switch resp.Code {
	case 340:
		// proceed
	case 335, 435, 436:
		return resp.Code, nil
	default:
		return 0, newError(KindProtocol, "post", resp.Code, "unexpected response: %s", resp.Arg)
	}

	if err := c.wire.SendBlock(article.Lines()); err != nil {
		return 0, newError(KindTransport, "post", 0, "sending article: %v", err)
	}
	line, err := c.wire.ReceiveLine()
	if err != nil {
		return 0, newError(KindTransport, "post", 0, "reading response: %v", err)
	}
	final, err := wire.ParseResponse(line)
	if err != nil {
		return 0, newError(KindProtocol, "post", 0, "malformed response %q", line)
	}
	switch final.Code {
	case 240, 436, 437:
		return final.Code, nil
	case 441:
		return 0, newError(KindProtocol, "post", 441, "posting failed: %s", final.Arg)
	default:
		return 0, newError(KindProtocol, "post", final.Code, "unexpected response: %s", final.Arg)
	}
}

// messageIDFrom extracts the Message-ID from article if id=="".
func messageIDFrom(article *probe.Article, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	found, ok := article.MessageID()
	if !ok {
		return "", newError(KindProtocol, "ihave", 0, "article has no Message-ID header")
	}
	return found, nil
}

// Ihave sends IHAVE <id> then, on 335, the article block. id may be empty,
// in which case it is extracted from article.
func (c *Client) Ihave(article *probe.Article, id string) (int, error) {
	id, err := messageIDFrom(article, id)
	if err != nil {
		return 0, err
	}
	resp, err := c.transact("IHAVE " + id)
	if err != nil {
		return 0, err
	}
	switch resp.Code {
	case 335:
		// proceed
	case 435, 436:
		return resp.Code, nil
	default:
		return 0, newError(KindProtocol, "ihave", resp.Code, "unexpected response: %s", resp.Arg)
	}

	if err := c.wire.SendBlock(article.Lines()); err != nil {
		return 0, newError(KindTransport, "ihave", 0, "sending article: %v", err)
	}
	line, err := c.wire.ReceiveLine()
	if err != nil {
		return 0, newError(KindTransport, "ihave", 0, "reading response: %v", err)
	}
	final, err := wire.ParseResponse(line)
	if err != nil {
		return 0, newError(KindProtocol, "ihave", 0, "malformed response %q", line)
	}
	switch final.Code {
	case 235, 436, 437:
		return final.Code, nil
	default:
		return 0, newError(KindProtocol, "ihave", final.Code, "unexpected response: %s", final.Arg)
	}
}

// Check sends CHECK id. Returns 238 (wanted), 438 (not wanted),
// or 431 (retry later).
func (c *Client) Check(id string) (int, error) {
	resp, err := c.transact("CHECK " + id)
	if err != nil {
		return 0, err
	}
	switch resp.Code {
	case 238, 438, 431:
		return resp.Code, nil
	default:
		return 0, newError(KindProtocol, "check", resp.Code, "unexpected response: %s", resp.Arg)
	}
}

// Takethis sends TAKETHIS id followed immediately by the article block,
// pipelined: the block is sent without awaiting an intermediate response,
// and only the single terminal response is consumed afterwards.
func (c *Client) Takethis(article *probe.Article, id string) (int, error) {
	id, err := messageIDFrom(article, id)
	if err != nil {
		return 0, err
	}
	if err := c.wire.SendLine("TAKETHIS " + id); err != nil {
		return 0, newError(KindTransport, "takethis", 0, "write: %v", err)
	}
	if err := c.wire.SendBlock(article.Lines()); err != nil {
		return 0, newError(KindTransport, "takethis", 0, "sending article: %v", err)
	}
	line, err := c.wire.ReceiveLine()
	if err != nil {
		return 0, newError(KindTransport, "takethis", 0, "read: %v", err)
	}
	resp, err := wire.ParseResponse(line)
	if err != nil {
		return 0, newError(KindProtocol, "takethis", 0, "malformed response %q", line)
	}
	switch resp.Code {
	case 239, 439:
		return resp.Code, nil
	default:
		return 0, newError(KindProtocol, "takethis", resp.Code, "unexpected response: %s", resp.Arg)
	}
}

// Quit sends QUIT, closes the transport, and marks the session terminal.
func (c *Client) Quit() error {
	if c.state == stateClosed {
		return nil
	}
	_ = c.wire.SendLine("QUIT")
	_, _ = c.wire.ReceiveLine()
	c.state = stateClosed
	return c.conn.Close()
}

// Close is an alias for Quit suited to defer, swallowing any error so a
// scoped session is always torn down on every exit path.
func (c *Client) Close() {
	_ = c.Quit()
}
