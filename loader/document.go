package loader

import (
	"regexp"
	"strings"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// document is the top-level shape of a ledger document. Nodes are kept raw where
// positions or document order matter.
type document struct {
	Options      yaml.Node   `yaml:"options"`
	Include      yaml.Node   `yaml:"include"`
	Transactions []yaml.Node `yaml:"transactions"`
}

type rawTransaction struct {
	Date      string      `yaml:"date"`
	Flag      string      `yaml:"flag"`
	Payee     string      `yaml:"payee"`
	Narration string      `yaml:"narration"`
	Tags      []string    `yaml:"tags"`
	Links     []string    `yaml:"links"`
	Meta      yaml.Node   `yaml:"meta"`
	Postings  []yaml.Node `yaml:"postings"`
}

type rawPosting struct {
	Account  string    `yaml:"account"`
	Flag     string    `yaml:"flag"`
	Units    yaml.Node `yaml:"units"`
	Cost     yaml.Node `yaml:"cost"`
	Price    yaml.Node `yaml:"price"`
	Inferred bool      `yaml:"inferred"`
	Meta     yaml.Node `yaml:"meta"`
}

type rawCost struct {
	Number   string `yaml:"number"`
	Currency string `yaml:"currency"`
	Date     string `yaml:"date,omitempty"`
	Label    string `yaml:"label,omitempty"`
}

// currencyRegex matches commodity symbols such as USD, HOOL or VACHR.
var currencyRegex = regexp.MustCompile(`^[A-Z][A-Z0-9'._-]*$`)

// absent reports whether a field was omitted or explicitly null.
func absent(node *yaml.Node) bool {
	return node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}

// decoder converts the YAML node tree of one file into AST values.
type decoder struct {
	filename string
}

// decode parses data into an AST. Empty input yields an empty AST.
func (d *decoder) decode(data []byte) (*ast.AST, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, syntaxError(d.filename, err)
	}

	tree := &ast.AST{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return tree, nil
	}

	body := root.Content[0]
	if body.Kind != yaml.MappingNode {
		return nil, nodeError(d.filename, body, "document must be a mapping")
	}

	var doc document
	if err := body.Decode(&doc); err != nil {
		return nil, syntaxError(d.filename, err)
	}

	options, err := d.decodeOptions(&doc.Options)
	if err != nil {
		return nil, err
	}
	tree.Options = options

	includes, err := d.decodeIncludes(&doc.Include)
	if err != nil {
		return nil, err
	}
	tree.Includes = includes

	tree.Transactions = make(ast.Transactions, 0, len(doc.Transactions))
	for i := range doc.Transactions {
		txn, err := d.decodeTransaction(&doc.Transactions[i])
		if err != nil {
			return nil, err
		}
		tree.Transactions = append(tree.Transactions, txn)
	}

	return tree, nil
}

// decodeOptions reads the options mapping. A sequence value yields one option per
// element, in order.
func (d *decoder) decodeOptions(node *yaml.Node) ([]*ast.Option, error) {
	if absent(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(d.filename, node, "options must be a mapping")
	}

	var options []*ast.Option
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		switch value.Kind {
		case yaml.ScalarNode:
			options = append(options, &ast.Option{
				Pos:   nodePosition(d.filename, key),
				Name:  key.Value,
				Value: value.Value,
			})
		case yaml.SequenceNode:
			for _, item := range value.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, nodeError(d.filename, item, "option %s must hold scalar values", key.Value)
				}
				options = append(options, &ast.Option{
					Pos:   nodePosition(d.filename, item),
					Name:  key.Value,
					Value: item.Value,
				})
			}
		default:
			return nil, nodeError(d.filename, value, "option %s must be a scalar or a list", key.Value)
		}
	}
	return options, nil
}

// decodeIncludes accepts a single filename or a list of filenames.
func (d *decoder) decodeIncludes(node *yaml.Node) ([]*ast.Include, error) {
	if absent(node) {
		return nil, nil
	}

	switch node.Kind {
	case yaml.ScalarNode:
		return []*ast.Include{{Pos: nodePosition(d.filename, node), Filename: node.Value}}, nil
	case yaml.SequenceNode:
		includes := make([]*ast.Include, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode || item.Value == "" {
				return nil, nodeError(d.filename, item, "include must be a filename")
			}
			includes = append(includes, &ast.Include{Pos: nodePosition(d.filename, item), Filename: item.Value})
		}
		return includes, nil
	}
	return nil, nodeError(d.filename, node, "include must be a filename or a list of filenames")
}

func (d *decoder) decodeTransaction(node *yaml.Node) (*ast.Transaction, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(d.filename, node, "transaction must be a mapping")
	}

	var raw rawTransaction
	if err := node.Decode(&raw); err != nil {
		return nil, &LoadError{Pos: nodePosition(d.filename, node), Message: "invalid transaction", Err: err}
	}

	if raw.Date == "" {
		return nil, nodeError(d.filename, node, "transaction is missing a date")
	}
	date, err := ast.NewDate(raw.Date)
	if err != nil {
		return nil, &LoadError{Pos: nodePosition(d.filename, node), Message: "invalid transaction", Err: err}
	}

	meta, err := d.decodeMetadata(&raw.Meta)
	if err != nil {
		return nil, err
	}

	txn := ast.NewTransaction(date, raw.Narration,
		ast.WithFlag(raw.Flag),
		ast.WithPayee(raw.Payee),
		ast.WithPosition(nodePosition(d.filename, node)),
		ast.WithTags(raw.Tags...),
		ast.WithLinks(raw.Links...),
		ast.WithTransactionMetadata(meta...),
	)

	txn.Postings = make([]*ast.Posting, 0, len(raw.Postings))
	for i := range raw.Postings {
		posting, err := d.decodePosting(&raw.Postings[i])
		if err != nil {
			return nil, err
		}
		txn.Postings = append(txn.Postings, posting)
	}

	return txn, nil
}

func (d *decoder) decodePosting(node *yaml.Node) (*ast.Posting, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(d.filename, node, "posting must be a mapping")
	}

	var raw rawPosting
	if err := node.Decode(&raw); err != nil {
		return nil, &LoadError{Pos: nodePosition(d.filename, node), Message: "invalid posting", Err: err}
	}

	account, err := ast.NewAccount(raw.Account)
	if err != nil {
		return nil, &LoadError{Pos: nodePosition(d.filename, node), Message: "invalid posting", Err: err}
	}

	units, err := d.decodeUnits(&raw.Units)
	if err != nil {
		return nil, err
	}

	meta, err := d.decodeMetadata(&raw.Meta)
	if err != nil {
		return nil, err
	}

	posting := ast.NewPosting(account,
		ast.WithPostingFlag(raw.Flag),
		ast.WithPostingPosition(nodePosition(d.filename, node)),
		ast.WithPostingMetadata(meta...),
	)
	posting.Units = units
	posting.Inferred = raw.Inferred

	if !absent(&raw.Cost) {
		cost, err := d.decodeCost(&raw.Cost)
		if err != nil {
			return nil, err
		}
		posting.Cost = cost
	}

	if !absent(&raw.Price) {
		price, err := d.decodeAmount(&raw.Price, "price")
		if err != nil {
			return nil, err
		}
		posting.Price = &price
	}

	return posting, nil
}

// decodeUnits reads "N CUR", "N", "CUR" or nothing. Only the first form is explicit.
func (d *decoder) decodeUnits(node *yaml.Node) (ast.Units, error) {
	if absent(node) {
		return ast.AutoUnits(), nil
	}
	if node.Kind != yaml.ScalarNode {
		return nil, nodeError(d.filename, node, "units must be a scalar")
	}

	fields := strings.Fields(node.Value)
	switch len(fields) {
	case 0:
		return ast.AutoUnits(), nil

	case 1:
		if number, err := decimal.NewFromString(fields[0]); err == nil {
			return ast.IncompleteUnits{Number: &number}, nil
		}
		currency := ast.NormalizeCurrency(fields[0])
		if !currencyRegex.MatchString(currency) {
			return nil, nodeError(d.filename, node, "invalid units %q", node.Value)
		}
		return ast.IncompleteUnits{Currency: currency}, nil

	case 2:
		amount, err := d.parseAmount(node, fields)
		if err != nil {
			return nil, err
		}
		return ast.ExplicitUnits{Number: amount.Number, Currency: amount.Currency}, nil
	}

	return nil, nodeError(d.filename, node, "invalid units %q", node.Value)
}

// decodeAmount reads a complete "N CUR" amount.
func (d *decoder) decodeAmount(node *yaml.Node, what string) (ast.Amount, error) {
	if node.Kind != yaml.ScalarNode {
		return ast.Amount{}, nodeError(d.filename, node, "%s must be a scalar", what)
	}
	fields := strings.Fields(node.Value)
	if len(fields) != 2 {
		return ast.Amount{}, nodeError(d.filename, node, "%s must be a number and a currency, got %q", what, node.Value)
	}
	return d.parseAmount(node, fields)
}

func (d *decoder) parseAmount(node *yaml.Node, fields []string) (ast.Amount, error) {
	amount, err := ast.NewAmount(fields[0], fields[1])
	if err != nil {
		return ast.Amount{}, &LoadError{Pos: nodePosition(d.filename, node), Message: "invalid amount", Err: err}
	}
	if !currencyRegex.MatchString(amount.Currency) {
		return ast.Amount{}, nodeError(d.filename, node, "invalid currency %q", fields[1])
	}
	return amount, nil
}

// decodeCost reads a cost given either as "N CUR" or as a mapping with number,
// currency and optional date and label.
func (d *decoder) decodeCost(node *yaml.Node) (*ast.Cost, error) {
	if node.Kind == yaml.ScalarNode {
		amount, err := d.decodeAmount(node, "cost")
		if err != nil {
			return nil, err
		}
		return ast.NewCost(amount), nil
	}

	if node.Kind != yaml.MappingNode {
		return nil, nodeError(d.filename, node, "cost must be an amount or a mapping")
	}

	var raw rawCost
	if err := node.Decode(&raw); err != nil {
		return nil, &LoadError{Pos: nodePosition(d.filename, node), Message: "invalid cost", Err: err}
	}
	if raw.Number == "" || raw.Currency == "" {
		return nil, nodeError(d.filename, node, "cost requires a number and a currency")
	}

	amount, err := d.parseAmount(node, []string{raw.Number, raw.Currency})
	if err != nil {
		return nil, err
	}

	var date *ast.Date
	if raw.Date != "" {
		date, err = ast.NewDate(raw.Date)
		if err != nil {
			return nil, &LoadError{Pos: nodePosition(d.filename, node), Message: "invalid cost", Err: err}
		}
	}

	return ast.NewCostWithLabel(amount, date, raw.Label), nil
}

// decodeMetadata reads a mapping of scalar values, keeping document order.
func (d *decoder) decodeMetadata(node *yaml.Node) ([]*ast.Metadata, error) {
	if absent(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(d.filename, node, "meta must be a mapping")
	}

	meta := make([]*ast.Metadata, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, nodeError(d.filename, value, "meta value for %s must be a scalar", key.Value)
		}
		meta = append(meta, ast.NewMetadata(key.Value, value.Value))
	}
	return meta, nil
}
