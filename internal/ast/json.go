package ast

import (
	"flint-lang/internal/span"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	// ---- Expressions ----
	case *LiteralExpr:
		return m("LiteralExpr", n.Span, "value", n.Value)
	case *VariableExpr:
		return m("VariableExpr", n.Span, "name", n.Name.Lexeme)
	case *AssignExpr:
		return m("AssignExpr", n.Span, "name", n.Name.Lexeme, "value", NodeToMap(n.Value))
	case *UnaryExpr:
		return m("UnaryExpr", n.Span, "op", n.Op.Lexeme, "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", n.Op.Lexeme,
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *LogicalExpr:
		return m("LogicalExpr", n.Span,
			"op", n.Op.Lexeme,
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *GroupingExpr:
		return m("GroupingExpr", n.Span, "inner", NodeToMap(n.Inner))
	case *ConditionalExpr:
		return m("ConditionalExpr", n.Span,
			"cond", NodeToMap(n.Cond),
			"then", NodeToMap(n.Then),
			"else", NodeToMap(n.Else))
	case *CallExpr:
		return m("CallExpr", n.Span,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args))
	case *GetExpr:
		return m("GetExpr", n.Span,
			"object", NodeToMap(n.Object),
			"name", n.Name.Lexeme)
	case *SetExpr:
		return m("SetExpr", n.Span,
			"object", NodeToMap(n.Object),
			"name", n.Name.Lexeme,
			"value", NodeToMap(n.Value))
	case *GetIndexExpr:
		return m("GetIndexExpr", n.Span,
			"object", NodeToMap(n.Object),
			"index", NodeToMap(n.Index))
	case *SetIndexExpr:
		return m("SetIndexExpr", n.Span,
			"object", NodeToMap(n.Object),
			"index", NodeToMap(n.Index),
			"value", NodeToMap(n.Value))
	case *ThisExpr:
		return m("ThisExpr", n.Span)
	case *SuperExpr:
		return m("SuperExpr", n.Span, "method", n.Method.Lexeme)
	case *ArrayExpr:
		return m("ArrayExpr", n.Span, "elements", exprSlice(n.Elements))
	case *LambdaExpr:
		return m("LambdaExpr", n.Span, "fn", NodeToMap(n.Fn))

	// ---- Statements ----
	case *ExprStmt:
		return m("ExprStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *LetStmt:
		decls := make([]interface{}, len(n.Decls))
		for i, d := range n.Decls {
			entry := map[string]interface{}{"name": d.Name.Lexeme}
			if d.Init != nil {
				entry["init"] = NodeToMap(d.Init)
			}
			decls[i] = entry
		}
		return m("LetStmt", n.Span, "decls", decls)
	case *BlockStmt:
		return m("BlockStmt", n.Span, "stmts", stmtSlice(n.Stmts))
	case *IfStmt:
		result := m("IfStmt", n.Span,
			"cond", NodeToMap(n.Cond),
			"then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *WhileStmt:
		return m("WhileStmt", n.Span,
			"cond", NodeToMap(n.Cond),
			"body", NodeToMap(n.Body))
	case *FunctionStmt:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Lexeme
		}
		return m("FunctionStmt", n.Span,
			"name", n.Name.Lexeme,
			"params", params,
			"isGetter", n.IsGetter,
			"body", stmtSlice(n.Body))
	case *ReturnStmt:
		result := m("ReturnStmt", n.Span)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result
	case *BreakStmt:
		return m("BreakStmt", n.Span)
	case *ContinueStmt:
		return m("ContinueStmt", n.Span)
	case *TryCatchContinueStmt:
		return m("TryCatchContinueStmt", n.Span, "body", NodeToMap(n.Body))
	case *ClassStmt:
		result := m("ClassStmt", n.Span, "name", n.Name.Lexeme)
		if n.Super != nil {
			result["super"] = NodeToMap(n.Super)
		}
		if len(n.Methods) > 0 {
			result["methods"] = funcSlice(n.Methods)
		}
		if len(n.ClassMethods) > 0 {
			result["classMethods"] = funcSlice(n.ClassMethods)
		}
		return result

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func funcSlice(fns []*FunctionStmt) []interface{} {
	result := make([]interface{}, len(fns))
	for i, fn := range fns {
		result[i] = NodeToMap(fn)
	}
	return result
}
