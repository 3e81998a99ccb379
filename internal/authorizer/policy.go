package authorizer

// BuildPolicy returns a single-statement policy applying effect to the method ARN of req.
func BuildPolicy(req *Request, effect Effect) PolicyDocument {
	var resource string
	if req != nil {
		resource = req.MethodArn
	}

	return PolicyDocument{
		Version: policyVersion,
		Statement: []Statement{{
			Effect:   effect,
			Action:   invokeAction,
			Resource: resource,
		}},
	}
}
