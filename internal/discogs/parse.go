package discogs

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/donaldgifford/discogs-alert/pkg/currency"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// symbolPrefix matches everything up to and including the first currency
// symbol, so "CA$12.00" yields "CA$".
var symbolPrefix = regexp.MustCompile(`^.*?[£$€¥]`)

// nonSymbolCodes are currencies the marketplace prints as letters.
var nonSymbolCodes = []string{"CHF", "SEK", "ZAR"}

var amountPattern = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// ParsePrice splits a marketplace price string such as "€12.50" or
// "CHF 30.00" into an ISO code and a value. Thousands separators and a
// leading "+" are ignored.
func ParsePrice(s string) (string, float64, error) {
	clean := strings.TrimSpace(strings.NewReplacer("+", "", ",", "").Replace(s))

	var symbol string
	if m := symbolPrefix.FindString(clean); m != "" {
		symbol = strings.TrimSpace(m)
	} else {
		for _, code := range nonSymbolCodes {
			if strings.Contains(clean, code) {
				symbol = code
				break
			}
		}
	}
	if symbol == "" {
		return "", 0, &domain.ParseError{Field: "price", Value: s}
	}

	code, ok := currency.Symbols[symbol]
	if !ok {
		return "", 0, &domain.ParseError{Field: "currency symbol", Value: s}
	}

	amount := amountPattern.FindString(strings.Replace(clean, symbol, "", 1))
	if amount == "" {
		return "", 0, &domain.ParseError{Field: "price", Value: s}
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return "", 0, &domain.ParseError{Field: "price", Value: s}
	}

	return code, v, nil
}

// ParseListings extracts listings from a release's marketplace page. The
// first result is sorted by item price. Rows that cannot be interpreted
// are left out and reported in the second result; rows without a
// ships-from country are dropped silently. The error is non-nil only when
// the document itself cannot be read.
func ParseListings(r io.Reader, releaseID int64) ([]domain.Listing, []error, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing marketplace page for release %d: %w", releaseID, err)
	}

	var (
		listings []domain.Listing
		rowErrs  []error
	)

	doc.Find("table.mpitems tbody tr").Each(func(i int, row *goquery.Selection) {
		l, ok, err := parseRow(row)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("release %d row %d: %w", releaseID, i, err))
			return
		}
		if ok {
			listings = append(listings, l)
		}
	})

	sort.SliceStable(listings, func(a, b int) bool {
		return listings[a].Price.Value < listings[b].Price.Value
	})

	return listings, rowErrs, nil
}

func parseRow(row *goquery.Selection) (domain.Listing, bool, error) {
	var l domain.Listing

	desc := row.Find("td.item_description")
	seller := row.Find("td.seller_info")
	priceCell := row.Find("td.item_price")

	id, err := listingID(desc)
	if err != nil {
		return l, false, err
	}
	l.ID = id

	paragraphs := desc.Find("p")
	// A hidden first paragraph carries "Unavailable in <country>".
	if paragraphs.Length() == 4 {
		l.Availability = strings.TrimSpace(paragraphs.First().Text())
	}

	if err := parseConditions(desc, &l); err != nil {
		return l, false, err
	}

	if last := paragraphs.Last(); last.Length() > 0 && !last.HasClass("item_condition") {
		if s := strippedStrings(last); len(s) > 0 {
			l.Comment = s[0]
		}
	}

	if err := parseSeller(seller, &l); err != nil {
		return l, false, err
	}

	from, ok := shipsFrom(seller)
	if !ok {
		return l, false, nil
	}
	l.SellerShipsFrom = from

	price, err := parseListingPrice(priceCell)
	if err != nil {
		return l, false, err
	}
	l.Price = price

	return l, true, nil
}

func listingID(desc *goquery.Selection) (int64, error) {
	href, ok := desc.Find("a").First().Attr("href")
	if !ok {
		return 0, &domain.ParseError{Field: "listing link", Value: ""}
	}
	path := href
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segment := path[strings.LastIndexByte(path, '/')+1:]
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil {
		return 0, &domain.ParseError{Field: "listing id", Value: href}
	}
	return id, nil
}

// parseConditions reads the media grade from the first unlabelled span of
// the condition paragraph and the sleeve grade, which defaults to
// NotGraded, from the sleeve span. An unknown label on either is an error.
func parseConditions(desc *goquery.Selection, l *domain.Listing) error {
	para := desc.Find("p.item_condition").First()

	media := para.ChildrenFiltered("span").Not(".mplabel").Not(".item_sleeve_condition").First()
	if media.Length() == 0 {
		return &domain.ParseError{Field: "media condition", Value: strings.Join(strippedStrings(para), " ")}
	}
	mediaCond, err := domain.ParseCondition(directText(media))
	if err != nil {
		return err
	}

	sleeveCond := domain.NotGraded
	if sleeve := para.Find("span.item_sleeve_condition").First(); sleeve.Length() > 0 {
		sleeveCond, err = domain.ParseCondition(strings.TrimSpace(sleeve.Text()))
		if err != nil {
			return err
		}
	}

	l.MediaCondition = mediaCond
	l.SleeveCondition = sleeveCond
	return nil
}

func parseSeller(seller *goquery.Selection, l *domain.Listing) error {
	if name := seller.Find("strong").First(); name.Length() > 0 {
		l.SellerName = strings.TrimSpace(name.Text())
	}

	if spans := seller.Find("span"); spans.Length() > 1 &&
		strings.TrimSpace(spans.Eq(1).Text()) == "New seller" {
		l.SellerNumRatings = 0
		l.SellerAvgRating = nil
		return nil
	}

	anchors := seller.Find("a")
	if anchors.Length() < 2 {
		return &domain.ParseError{Field: "seller ratings", Value: strings.TrimSpace(seller.Text())}
	}
	countText := strings.Fields(anchors.Eq(1).Text())
	if len(countText) == 0 {
		return &domain.ParseError{Field: "seller ratings", Value: anchors.Eq(1).Text()}
	}
	n, err := strconv.Atoi(strings.ReplaceAll(countText[0], ",", ""))
	if err != nil {
		return &domain.ParseError{Field: "seller ratings", Value: countText[0]}
	}
	l.SellerNumRatings = n

	strongs := seller.Find("strong")
	if strongs.Length() < 2 {
		return &domain.ParseError{Field: "seller rating", Value: strings.TrimSpace(seller.Text())}
	}
	ratingText := strings.TrimSpace(strongs.Eq(1).Text())
	ratingText = strings.TrimSpace(strings.SplitN(ratingText, "%", 2)[0])
	rating, err := strconv.ParseFloat(ratingText, 64)
	if err != nil {
		return &domain.ParseError{Field: "seller rating", Value: ratingText}
	}
	l.SellerAvgRating = &rating
	return nil
}

// shipsFrom returns the text node following the "Ships From:" label.
func shipsFrom(seller *goquery.Selection) (string, bool) {
	label := seller.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == "Ships From:"
	}).First()
	if label.Length() == 0 {
		return "", false
	}
	contents := label.Parent().Contents()
	if contents.Length() < 2 {
		return "", false
	}
	from := strings.TrimSpace(contents.Eq(1).Text())
	return from, from != ""
}

func parseListingPrice(cell *goquery.Selection) (domain.ListingPrice, error) {
	var p domain.ListingPrice

	priceText := directText(cell.Find("span.price").First())
	code, value, err := ParsePrice(priceText)
	if err != nil {
		return p, err
	}
	p.Currency, p.Value = code, value

	// Shipping without a currency ("shipping varies") is left unset.
	shipText := directText(cell.Find("span.item_shipping").First())
	if shipCode, shipValue, err := ParsePrice(shipText); err == nil {
		p.Shipping = &domain.ShippingPrice{Currency: shipCode, Value: shipValue}
	}

	return p, nil
}

// directText returns the first non-empty text node directly under s.
func directText(s *goquery.Selection) string {
	var out string
	s.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if goquery.NodeName(c) != "#text" {
			return true
		}
		if t := strings.TrimSpace(c.Text()); t != "" {
			out = t
			return false
		}
		return true
	})
	return out
}

// strippedStrings returns every non-empty text node under s in document
// order, trimmed.
func strippedStrings(s *goquery.Selection) []string {
	var out []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if t := strings.TrimSpace(c.Text()); t != "" {
				out = append(out, t)
			}
			return
		}
		out = append(out, strippedStrings(c)...)
	})
	return out
}
